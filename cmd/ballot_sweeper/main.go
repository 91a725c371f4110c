package main

import (
	"ballot_system/configs"
	"ballot_system/internal/ballot"
	"ballot_system/internal/db"
	"ballot_system/internal/db/repositories"
	"ballot_system/internal/di"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	config, err := configs.LoadBallotSweeperConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := di.NewLogger(config.App, config.Logger)
	logger.Info("config loaded")

	logger.Info("starting db")
	database, err := db.StartDB(config.DB, logger)
	if err != nil {
		logger.Fatalw("failed to start db", "error", err)
	}
	logger.Info("db started")

	store := ballot.NewStore(
		repositories.NewBallotRepository(database),
		repositories.NewChoiceRepository(database),
		repositories.NewVoteRepository(database),
		repositories.NewLinkRepository(database),
		logger,
	)

	notifier := ballot.NewNotifier()
	notifier.Register(ballot.ListenerFunc(func(event ballot.Event) {
		logger.Infow("ballot event", "kind", event.Kind, "ballotID", event.BallotID)
	}))

	ttl := time.Duration(config.Sweeper.DraftTTLHours) * time.Hour
	sweeper := ballot.NewSweeper(store, notifier, ttl, logger)

	s := gocron.NewScheduler(time.UTC)

	s.Cron(config.Sweeper.Schedule).Do(func() {
		swept, err := sweeper.Sweep()
		if err != nil {
			logger.Errorw("sweep failed", "error", err)
			return
		}

		if swept == 0 {
			logger.Info("no stale drafts")
		} else {
			logger.Infow("swept stale drafts", "count", swept)
		}
	})

	s.StartBlocking()
}
