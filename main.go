package main

import (
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/httpserver"
	"github.com/robalobadob/steamgauge/apps/go-server/internal/scores"
	"github.com/robalobadob/steamgauge/apps/go-server/internal/session"
	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	cache := steam.NewCache(0)
	pipeline := steam.NewPipeline(steam.NewClient(), cache)
	sessions := session.New(pipeline, scores.NewStore(db))

	startCacheSweeper(cache)

	srv := httpserver.New(sessions, cache)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// startCacheSweeper prunes expired cache entries every hour.
func startCacheSweeper(cache *steam.Cache) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Warn().Err(err).Msg("cache sweeper disabled")
		return
	}
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			if n := cache.PruneExpired(); n > 0 {
				log.Debug().Int("removed", n).Msg("pruned expired cache entries")
			}
		}),
	)
	sched.Start()
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
