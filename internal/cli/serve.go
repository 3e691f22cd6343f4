package cli

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"smartfinance/internal/cache"
	apphttp "smartfinance/internal/http"
	"smartfinance/internal/log"
	"smartfinance/internal/records"
	"smartfinance/internal/sheets"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = time.Minute
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	var rateLimit int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: a.withEnv(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			if addr == "" {
				addr = ":" + e.cfg.Port
			}
			ctx, stop := ShutdownContext(ctx)
			defer stop()
			ctx = log.NewContext(ctx, e.logger)

			deps := apphttp.Deps{
				Sessions:     e.sessions,
				StoreOptions: e.storeOptions(),
				Logger:       e.logger,
				RateLimit:    rateLimit,
			}
			if e.sheets != nil {
				deps.Exporter = sheets.NewExporter(e.sheets, e.cfg.GoogleSheetName)
			}
			srv, err := apphttp.NewServer(ctx, addr, deps)
			if err != nil {
				return err
			}
			srv.ReadTimeout = 10 * time.Second
			srv.WriteTimeout = 10 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				e.logger.InfoContext(gctx, "Starting smartfinance server",
					"addr", addr,
					"backend", e.cfg.KVBackend,
					"sheets", deps.Exporter != nil,
					"amqp", e.publisher != nil)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				e.logger.InfoContext(ctx, "Shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			g.Go(func() error {
				return records.RunFlusher(gctx, e.cfg.FlushInterval, srv, e.logger)
			})
			if e.cache != nil {
				manager := cache.NewManager(e.logger.WithComponent(log.ComponentCache).Logger)
				manager.Register(e.cache)
				g.Go(func() error {
					return manager.Run(gctx, cacheCleanupInterval)
				})
			}
			if e.forwarder != nil {
				g.Go(func() error {
					return e.forwarder.Run(gctx)
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}
			rateLimited, suspicious := srv.SecurityStats()
			e.logger.InfoContext(ctx, "Server stopped gracefully",
				"rate_limited", rateLimited,
				"suspicious", suspicious)
			return nil
		}),
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT)")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "mutating requests per client and minute")

	return cmd
}
