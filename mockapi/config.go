package mockapi

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/restdemo/validation"
)

// Defaults applied by Config.ApplyDefaults.
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 3000
	DefaultMaxBodySize     = "1MB"
	DefaultShutdownTimeout = 5 * time.Second

	defaultMaxBodyBytes = 1 << 20
)

// Config holds fake API server configuration.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	// Port 0 picks a free port when the server starts.
	Port            int           `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gte=0"`
	MaxBodySize     string        `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "1MB", "512KB"

	// SeedFile replaces the embedded seed posts when set.
	SeedFile string `yaml:"seed_file" mapstructure:"seed_file"`

	// Persist makes writes change the stored posts. When false, writes are
	// answered as if they succeeded but nothing is stored, like the public
	// JSONPlaceholder service.
	Persist bool `yaml:"persist" mapstructure:"persist"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = DefaultMaxBodySize
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.MaxBodySize != "" {
		if _, err := parseSize(c.MaxBodySize); err != nil {
			return fmt.Errorf("mockapi.max_body_size: %w", err)
		}
	}
	return nil
}

// Addr returns the configured listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) maxBodyBytes() int64 {
	n, err := parseSize(c.MaxBodySize)
	if err != nil || n <= 0 {
		return defaultMaxBodyBytes
	}
	return n
}

// parseSize reads sizes such as "10MB", "512KB", "1GB" or a plain byte
// count. An empty string is 0.
func parseSize(size string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(size))
	if s == "" {
		return 0, nil
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1 << 30
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1 << 20
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = 1 << 10
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", size)
	}
	return n * multiplier, nil
}
