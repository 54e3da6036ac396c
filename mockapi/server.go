package mockapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/restdemo/component"
	"github.com/kbukum/restdemo/logger"
	"github.com/kbukum/restdemo/mockapi/store"
)

const componentName = "mockapi"

var (
	_ component.Component     = (*Server)(nil)
	_ component.Describable   = (*Server)(nil)
	_ component.RouteProvider = (*Server)(nil)
)

// Server serves the fake posts API over HTTP/1.1 and HTTP/2 cleartext.
type Server struct {
	cfg        Config
	store      *store.Store
	engine     *gin.Engine
	handler    http.Handler
	httpServer *http.Server
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

// New validates cfg, loads the seed posts and builds the server. Defaults
// are not applied; call cfg.ApplyDefaults first when wanted. A nil log uses
// the "mockapi" component logger.
func New(cfg Config, log *logger.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st, err := loadStore(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	return NewWithStore(cfg, st, log), nil
}

// NewWithStore builds a server around an existing store.
func NewWithStore(cfg Config, st *store.Store, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Get(componentName)
	}
	s := &Server{cfg: cfg, store: st, log: log}
	s.engine = NewRouter(cfg, st, log, func(ctx context.Context) []component.Health {
		return []component.Health{s.Health(ctx)}
	})
	s.handler = h2c.NewHandler(s.engine, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          cfg.IdleTimeout,
	})
	return s
}

func loadStore(seedFile string) (*store.Store, error) {
	if seedFile == "" {
		return store.New()
	}
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, fmt.Errorf("mockapi: read seed file: %w", err)
	}
	return store.NewFromYAML(data)
}

// Handler returns the h2c-wrapped router, for use with httptest.
func (s *Server) Handler() http.Handler { return s.handler }

// Store returns the posts store.
func (s *Server) Store() *store.Store { return s.store }

// Name returns the component name used for registration.
func (s *Server) Name() string { return componentName }

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("mockapi: already started on %s", s.listener.Addr())
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("mockapi: bind %s: %w", s.cfg.Addr(), err)
	}

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.listener = ln
	s.httpServer = srv
	s.done = done

	s.log.Info("Fake API listening", logger.Fields(
		"addr", ln.Addr().String(),
		"posts", s.store.Count(),
		"persist", s.cfg.Persist,
	))
	return nil
}

// Stop gracefully shuts the server down within Config.ShutdownTimeout.
// Stopping a server that is not running is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.httpServer, s.done
	s.httpServer, s.listener, s.done = nil, nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	shutdownCtx := ctx
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mockapi: shutdown: %w", err)
	}
	<-done
	s.log.Info("Fake API stopped")
	return nil
}

// Health reports healthy while the server is listening.
func (s *Server) Health(ctx context.Context) component.Health {
	s.mu.Lock()
	running := s.listener != nil
	s.mu.Unlock()

	if !running {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d posts", s.store.Count()),
	}
}

// Addr returns the bound address while running, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr()
}

// URL returns the base URL clients should use.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Describe returns the startup summary entry.
func (s *Server) Describe() component.Description {
	port := s.cfg.Port
	if tcp, ok := s.tcpAddr(); ok {
		port = tcp.Port
	}
	mode := "read-only"
	if s.cfg.Persist {
		mode = "persistent"
	}
	return component.Description{
		Name:    "Fake posts API",
		Type:    "server",
		Details: fmt.Sprintf("%s posts=%d %s", s.Addr(), s.store.Count(), mode),
		Port:    port,
	}
}

// Routes returns the registered routes sorted by path then method.
func (s *Server) Routes() []component.Route {
	infos := s.engine.Routes()
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	routes := make([]component.Route, 0, len(infos))
	for _, r := range infos {
		routes = append(routes, component.Route{Method: r.Method, Path: r.Path})
	}
	return routes
}

func (s *Server) tcpAddr() (*net.TCPAddr, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil, false
	}
	tcp, ok := s.listener.Addr().(*net.TCPAddr)
	return tcp, ok
}
