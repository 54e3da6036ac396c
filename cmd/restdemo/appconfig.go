package main

import (
	"fmt"
	"strings"

	"github.com/kbukum/restdemo/config"
	"github.com/kbukum/restdemo/httpclient"
	"github.com/kbukum/restdemo/mockapi"
	"github.com/kbukum/restdemo/observability"
	"github.com/kbukum/restdemo/version"
)

// DefaultResource is the collection the demo works on.
const DefaultResource = "posts"

// AppConfig is the configuration of every restdemo command.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Client        httpclient.Config    `yaml:"client" mapstructure:"client"`
	Resource      string               `yaml:"resource" mapstructure:"resource"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	MockAPI       mockapi.Config       `yaml:"mockapi" mapstructure:"mockapi"`
}

// ApplyDefaults fills every section's defaults.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = version.Product
	}
	if c.Version == "" {
		c.Version = version.GetShortVersion()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Client.ApplyDefaults()
	c.Resource = strings.Trim(c.Resource, "/")
	if c.Resource == "" {
		c.Resource = DefaultResource
	}
	c.Observability.ApplyDefaults()
	c.MockAPI.ApplyDefaults()
}

// Validate checks every section. Logs may not go to stdout, which carries
// the demo output.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if strings.EqualFold(c.Logging.Output, "stdout") {
		return fmt.Errorf("config.logging.output must be stderr: stdout carries the demo output")
	}
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("config.client: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	if err := c.MockAPI.Validate(); err != nil {
		return fmt.Errorf("config.mockapi: %w", err)
	}
	return nil
}
