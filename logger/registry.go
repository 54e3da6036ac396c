package logger

import "sync"

var (
	namedMu sync.RWMutex
	named   = make(map[string]*Logger)
)

// Register pins the logger returned by Get(name), e.g. a Nop logger for a
// noisy package in tests. Init clears every pinned logger.
func Register(name string, l *Logger) {
	namedMu.Lock()
	defer namedMu.Unlock()
	named[name] = l
}

// Get returns the logger for a package or component. Unless one was pinned
// with Register, it is the global logger tagged with component=name and is
// cached until the next Init.
func Get(name string) *Logger {
	namedMu.RLock()
	l, ok := named[name]
	namedMu.RUnlock()
	if ok {
		return l
	}

	namedMu.Lock()
	defer namedMu.Unlock()
	if l, ok := named[name]; ok {
		return l
	}
	l = GetGlobalLogger().WithComponent(name)
	named[name] = l
	return l
}

func resetNamed() {
	namedMu.Lock()
	defer namedMu.Unlock()
	clear(named)
}
