package observability

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kbukum/restdemo/validation"
)

// Config groups the tracing and metrics settings of a service.
type Config struct {
	Tracing TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills zero-valued fields with development defaults.
func (c *Config) ApplyDefaults() {
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = "localhost:4318"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// ShutdownFunc flushes and stops whatever Setup started.
type ShutdownFunc func(ctx context.Context) error

// Setup installs the global tracer and meter providers that cfg enables.
// Disabled signals keep the OpenTelemetry no-op providers, so spans and
// instruments are always safe to use. The returned ShutdownFunc is never nil.
func Setup(ctx context.Context, cfg Config, service, version, environment string) (ShutdownFunc, error) {
	var shutdowns []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return stderrors.Join(errs...)
	}

	if cfg.Tracing.Enabled {
		tc := cfg.Tracing
		tc.ServiceName, tc.ServiceVersion, tc.Environment = service, version, environment
		tp, err := InitTracer(ctx, tc)
		if err != nil {
			return shutdown, fmt.Errorf("observability: tracing: %w", err)
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if cfg.Metrics.Enabled {
		mc := cfg.Metrics
		mc.ServiceName, mc.ServiceVersion, mc.Environment = service, version, environment
		mp, err := InitMeter(ctx, mc)
		if err != nil {
			return shutdown, fmt.Errorf("observability: metrics: %w", err)
		}
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return shutdown, nil
}
