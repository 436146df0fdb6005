package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tonarb/internal/arbitrage"
	"tonarb/internal/config"
	"tonarb/internal/dex"
	"tonarb/internal/dex/csvpool"
	"tonarb/internal/dex/dedust"
	"tonarb/internal/dex/stonfi"
	"tonarb/internal/infra/health"
	"tonarb/internal/infra/http/middleware"
	"tonarb/internal/infra/log"
	"tonarb/internal/infra/metrics"
	"tonarb/internal/infra/netutil"
	"tonarb/internal/infra/runner"
	"tonarb/internal/infra/version"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := log.NewLogger(cfg)

	// Init metrics and start HTTP endpoint
	registry := metrics.Init(logger)
	mux := http.NewServeMux()
	// admin endpoints (metrics, pprof) behind IP allowlist gate
	adminCIDRs := netutil.MustParseCIDRs(cfg.Server.AdminAllowCIDRs)
	mux.Handle("/metrics", middleware.AdminGate(adminCIDRs, metrics.Handler(registry)))
	mux.HandleFunc("/healthz", health.Healthz)
	mux.HandleFunc("/readyz", health.Readyz)
	mux.HandleFunc("/version", version.Handler)
	if cfg.Server.Pprof {
		mux.Handle("/debug/pprof/", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Index)))
		mux.Handle("/debug/pprof/cmdline", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("/debug/pprof/profile", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Profile)))
		mux.Handle("/debug/pprof/symbol", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Symbol)))
		mux.Handle("/debug/pprof/trace", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Trace)))
	}

	// wrap mux with middlewares (request id and logging)
	handler := middleware.RequestID(middleware.Logger(logger)(mux))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	var sources []dex.Source
	if cfg.Venues.Dedust.Enabled {
		sources = append(sources, dedust.New(cfg))
	}
	if cfg.Venues.Stonfi.Enabled {
		sources = append(sources, stonfi.New(cfg))
	}
	if cfg.Venues.CSV.Path != "" {
		sources = append(sources, csvpool.New(cfg.Venues.CSV.Path))
	}
	if len(sources) == 0 {
		logger.Fatal().Msg("no pool sources enabled; check venues config")
	}

	logger.Info().
		Str("base", cfg.Scan.BaseSymbol).
		Int("hops", cfg.Scan.Hops).
		Str("addr", cfg.Server.Addr).
		Msg("Arbitrage scanner started")

	g := &runner.Group{}
	// scan engine worker
	workerErrCh := g.Go(ctx, func(ctx context.Context) error {
		eng := arbitrage.New(cfg, sources, logger)
		return eng.Run(ctx)
	})

	// mark ready after initialization completes
	health.SetReady(true)

	// Wait for termination signals or worker error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case s := <-sigCh:
		logger.Info().Str("signal", s.String()).Msg("shutdown signal received")
	case err := <-workerErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("scan engine error")
			health.SetReady(false)
		}
	}

	// mark not ready before shutdown
	health.SetReady(false)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("shutdown complete")
}
