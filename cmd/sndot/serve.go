package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sndot/internal/donor/handler"
	"sndot/internal/platform/httpserver"
	"sndot/internal/platform/metrics"
	"sndot/pkg/platform/httputil"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the donor registry HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.Background()) }()

			a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			r := chi.NewRouter()
			r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
			r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
				hctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
				defer cancel()
				if err := a.health(hctx); err != nil {
					httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
					return
				}
				httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			})
			handler.New(a.registrar, c.logger, metrics.New(a.registry)).Register(r)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return httpserver.Run(gctx, httpserver.New(c.cfg.Server.Addr, r), c.cfg.Server.ShutdownTimeout, c.logger)
			})
			if a.relay != nil {
				g.Go(func() error {
					if err := a.relay.Run(gctx); err != nil && gctx.Err() == nil {
						return err
					}
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = c.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
