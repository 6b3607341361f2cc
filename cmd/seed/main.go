package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/observability"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/reviewsapi"
	redisad "github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/redis"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/app"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/shared"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage"
)

func main() {
	cfg := shared.Load()
	migrate := flag.Bool("migrate", false, "apply the schema before seeding")
	count := flag.Int("count", cfg.SeedCount, "number of sample reviews")
	flag.Parse()
	cfg.SeedCount = *count

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedAPIURL != "" {
		if err := seedViaAPI(ctx, cfg); err != nil {
			log.Fatal().Err(err).Msg("seeding failed")
		}
		return
	}

	log.Info().Str("driver", cfg.DBDriver).Int("reviews", cfg.SeedCount).Bool("migrate", *migrate).Msg("seeder starting")

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer store.Close()

	if *migrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("schema up to date")
	}

	// drop cached author lists held by a running API
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	svc := app.NewReviewService(store, cache, nil)
	if err := svc.Seed(ctx, cfg.SeedCount); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Int("reviews", cfg.SeedCount).Msg("seeding completed")
}

// seedViaAPI posts the sample reviews one at a time so ids follow input order.
func seedViaAPI(ctx context.Context, cfg shared.Config) error {
	client, err := reviewsapi.New(cfg.SeedAPIURL, cfg.SeedRPS)
	if err != nil {
		return err
	}
	log.Info().Str("base", cfg.SeedAPIURL).Int("reviews", cfg.SeedCount).Int("rps", cfg.SeedRPS).Msg("seeding through API")

	for i, in := range app.SeedInputs(cfg.SeedCount) {
		rv, err := client.CreateReview(ctx, in)
		if err != nil {
			log.Warn().Int("index", i).Err(err).Msg("create failed")
			return err
		}
		log.Debug().Int64("id", rv.ID).Msg("review created")
	}
	log.Info().Int("reviews", cfg.SeedCount).Msg("seeding completed")
	return nil
}
