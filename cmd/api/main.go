package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/http_server"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/observability"
	redisad "github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/redis"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/app"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/shared"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer store.Close()

	// cache stays a nil interface when disabled
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; running without cache")
			_ = rc.Close()
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	// deps
	q := app.NewQueryService(store, cache, cfg.CacheTTL)
	c := app.NewReviewService(store, cache, nil)

	// http
	srv := server.New(cfg.HTTPTimeout)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c})
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("driver", cfg.DBDriver).Bool("cache", cache != nil).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(sctx)
		}
		return httpSrv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http server failed")
		return
	}
	log.Info().Msg("stopped")
}
