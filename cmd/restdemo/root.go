package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/restdemo/component"
	"github.com/kbukum/restdemo/config"
	"github.com/kbukum/restdemo/demo"
	"github.com/kbukum/restdemo/httpclient"
	"github.com/kbukum/restdemo/httpclient/rest"
	"github.com/kbukum/restdemo/logger"
	"github.com/kbukum/restdemo/observability"
	"github.com/kbukum/restdemo/resource"
	"github.com/kbukum/restdemo/version"
)

const longHelp = `restdemo sends one GET, POST, PUT and DELETE to a JSON REST API and
prints each result. By default it talks to JSONPlaceholder
(https://jsonplaceholder.typicode.com) and works on /posts/1.

Configuration comes from config.yml, a .env file and the environment
(RESTDEMO_CLIENT_BASE_URL, RESTDEMO_RESOURCE, RESTDEMO_LOGGING_LEVEL, ...). Logs go to stderr; stdout
only carries the demo output.`

// app holds the state shared by the commands of one invocation.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configFile string

	cfg      AppConfig
	log      *logger.Logger
	shutdown observability.ShutdownFunc
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "restdemo",
		Short:             "Read, create, replace and remove one post on a JSON REST API",
		Long:              longHelp,
		Version:           version.GetShortVersion(),
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd.Context()) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDemo(cmd.Context())
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./cmd/restdemo/config.yml, ./config/config.yml or ./config.yml)")

	root.AddCommand(newServeCmd(a), newVersionCmd(a), newConfigCmd(a))
	return root
}

// setup loads the configuration and starts logging and telemetry.
func (a *app) setup(ctx context.Context) error {
	opts := []config.LoaderOption{config.WithEnvPrefix(version.Product)}
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if err := config.Load(version.Product, &a.cfg, opts...); err != nil {
		return err
	}

	a.cfg.Logging.Writer = a.stderr
	logger.Init(a.cfg.Logging)
	a.log = logger.Get(version.Product)

	shutdown, err := observability.Setup(ctx, a.cfg.Observability, a.cfg.Name, a.cfg.Version, a.cfg.Environment)
	a.shutdown = shutdown
	if err != nil {
		return err
	}

	a.log.Debug("Configuration loaded", logger.Fields(
		"environment", a.cfg.Environment,
		"base_url", a.cfg.Client.BaseURL,
		logger.FieldResource, a.cfg.Resource,
	))
	return nil
}

// close flushes telemetry. It is safe to call when setup never ran.
func (a *app) close(ctx context.Context) {
	if a.shutdown == nil {
		return
	}
	if err := a.shutdown(ctx); err != nil && a.log != nil {
		a.log.Warn("Telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
	}
}

func (a *app) runDemo(ctx context.Context) (err error) {
	clientComp := httpclient.NewComponent("", rest.WithJSONHeaders(a.cfg.Client))
	registry := component.NewRegistry()
	if err := registry.Register(clientComp); err != nil {
		return err
	}
	if err := registry.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()
		if stopErr := registry.StopAll(stopCtx); stopErr != nil && err == nil {
			err = stopErr
		}
	}()
	for _, h := range registry.HealthAll(ctx) {
		a.log.Debug("Component health", logger.Fields("component", h.Name, "status", string(h.Status), "message", h.Message))
	}

	metrics, err := observability.NewMetrics(observability.Meter(a.cfg.Name))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	ep := resource.NewEndpoint(rest.NewFromClient(clientComp.Client()), a.cfg.Resource,
		resource.WithMetrics(metrics),
		resource.WithLogger(logger.Get("resource")),
	)
	return demo.Run(ctx, ep, a.stdout)
}
