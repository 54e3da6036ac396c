package httpclient

import (
	"context"
	"sync"

	"github.com/kbukum/restdemo/component"
)

const defaultComponentName = "httpclient"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component puts a Client under registry lifecycle. The client is built
// in Start and its idle connections are released in Stop.
type Component struct {
	name   string
	config Config

	mu     sync.RWMutex
	client *Client
}

// NewComponent creates a client component. No client exists until Start.
// An empty name means "httpclient".
func NewComponent(name string, cfg Config) *Component {
	if name == "" {
		name = defaultComponentName
	}
	return &Component{name: name, config: cfg}
}

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Start builds the client. It performs no I/O.
func (c *Component) Start(_ context.Context) error {
	client, err := New(c.config)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	return nil
}

// Stop releases pooled connections. The client stays usable.
func (c *Component) Stop(_ context.Context) error {
	if client := c.Client(); client != nil {
		client.CloseIdleConnections()
	}
	return nil
}

// Health is unhealthy until Start has built the client.
func (c *Component) Health(_ context.Context) component.Health {
	client := c.Client()
	if client == nil {
		return component.Health{Name: c.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.name, Status: component.StatusHealthy, Message: client.BaseURL()}
}

// Describe returns the startup summary entry.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.name,
		Type:    "http-client",
		Details: c.config.BaseURL,
	}
}

// Client returns the client built by Start, or nil before Start.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}
