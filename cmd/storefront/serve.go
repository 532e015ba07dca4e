//go:build !test

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jbweber/homelab/storefront/internal/api"
	"github.com/jbweber/homelab/storefront/internal/config"
	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/metrics"
)

func newServeCommand(getConfig func() *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Named("serve")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to close resources", logger.Err(err))
		}
	}()

	metricsHandler, err := metrics.RegisterMetrics(metrics.Config{
		Registry: prometheus.DefaultRegisterer,
		DB:       a.ds.DB.DB,
	})
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	router := api.NewAPI(api.Deps{
		Shops:      a.shops,
		Products:   a.products,
		Categories: a.categories,
		Checks:     map[string]api.Pinger{"database": a.ds, "cache": a.cache},
		Metrics:    metricsHandler,
		Pagination: api.Pagination{
			DefaultSize: cfg.Pagination.DefaultSize,
			MaxSize:     cfg.Pagination.MaxSize,
		},
	}).Router()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", srv.Addr), logger.String("driver", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		a.ds.Stats(shutdownCtx)
		return nil
	})

	return g.Wait()
}
