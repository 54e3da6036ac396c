package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/restdemo/component"
	"github.com/kbukum/restdemo/logger"
	"github.com/kbukum/restdemo/mockapi"
)

const stopTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		port    int
		persist bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fake posts API until interrupted",
		Long: `serve starts an in-memory imitation of JSONPlaceholder's /posts
collection. Point the demo at it with RESTDEMO_CLIENT_BASE_URL=http://127.0.0.1:3000.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.MockAPI
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("persist") {
				cfg.Persist = persist
			}
			return a.serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", mockapi.DefaultPort, "port to listen on")
	cmd.Flags().BoolVar(&persist, "persist", false, "keep created, replaced and deleted posts")
	return cmd
}

// serve runs the fake API until ctx is cancelled.
func (a *app) serve(ctx context.Context, cfg mockapi.Config) error {
	srv, err := mockapi.New(cfg, logger.Get("mockapi"))
	if err != nil {
		return err
	}

	registry := component.NewRegistry()
	if err := registry.Register(srv); err != nil {
		return err
	}
	if err := registry.StartAll(ctx); err != nil {
		return err
	}

	for _, d := range registry.Summary() {
		a.log.Info("Component ready", logger.Fields("name", d.Name, "type", d.Type, "details", d.Details))
	}
	for _, r := range registry.Routes() {
		a.log.Debug("Route", logger.Fields(logger.FieldMethod, r.Method, "path", r.Path))
	}
	a.log.Info("Serving fake API, press Ctrl+C to stop", logger.Fields(logger.FieldURL, srv.URL()))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return registry.StopAll(stopCtx)
}
