package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"webfingerd/internal/platform/config"
	"webfingerd/internal/platform/httpserver"
	"webfingerd/internal/platform/logger"
	"webfingerd/internal/platform/metrics"
	"webfingerd/internal/resolve"
	"webfingerd/internal/tenant/loader"
	"webfingerd/internal/tenant/registry"
	httptransport "webfingerd/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Resolution logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	snapshot, err := loader.Load(cfg.URNAliasFile, cfg.ConfigDir)
	if err != nil {
		log.Error("configuration rejected", "error", err)
		os.Exit(1)
	}
	reg := registry.New(snapshot)
	log.Info("configuration loaded",
		"tenants", snapshot.TenantCount(),
		"users", snapshot.UserCount(),
		"aliases", snapshot.Aliases().Len(),
	)

	m := metrics.New()
	engine := resolve.NewEngine(log, m)
	handler := httptransport.NewHandler(reg, engine, log)
	router := httptransport.NewRouter(handler, log)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting webfingerd", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// SIGHUP swaps in a freshly validated snapshot; a failed reload keeps
	// the old snapshot serving.
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				next, err := loader.Load(cfg.URNAliasFile, cfg.ConfigDir)
				if err != nil {
					m.IncrementReload("failed")
					log.Error("reload rejected, keeping current snapshot", "error", err)
					continue
				}
				reg.Swap(next)
				m.IncrementReload("ok")
				log.Info("configuration reloaded",
					"tenants", next.TenantCount(),
					"users", next.UserCount(),
					"aliases", next.Aliases().Len(),
				)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server shutdown complete")
}
