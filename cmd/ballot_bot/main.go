package main

import (
	"ballot_system/configs"
	"ballot_system/internal/ballot"
	"ballot_system/internal/db"
	"ballot_system/internal/db/repositories"
	"ballot_system/internal/di"
	tgbot "ballot_system/internal/tg_bot"
	"ballot_system/internal/tg_bot/commands"
	"ballot_system/internal/tg_bot/extension"
	"ballot_system/internal/tg_bot/handlers"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	config, err := configs.LoadBallotBotConfig()
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

	ballotRepository := repositories.NewBallotRepository(database)
	choiceRepository := repositories.NewChoiceRepository(database)
	voteRepository := repositories.NewVoteRepository(database)
	linkRepository := repositories.NewLinkRepository(database)
	userRepository := repositories.NewUserRepository(database)

	api, err := tgbotapi.NewBotAPI(config.Bot.Token)
	if err != nil {
		logger.Fatalw("failed to create bot api", "error", err)
	}

	store := ballot.NewStore(ballotRepository, choiceRepository, voteRepository, linkRepository, logger)
	notifier := ballot.NewNotifier()
	notifier.Register(ballot.ListenerFunc(func(event ballot.Event) {
		logger.Infow("ballot event", "kind", event.Kind, "ballotID", event.BallotID)
	}))

	receiver := extension.NewMessageReceiver(api, logger)
	publisher := ballot.NewPublisher(store, receiver, logger)
	resolver := extension.NewParticipantResolver(userRepository)

	handler := handlers.NewBallotBotCommandHandler(userRepository, logger, []commands.Command{
		commands.NewStartCommand(logger),
		commands.NewCreateBallotCommand(store, publisher, notifier, userRepository, logger),
		commands.NewOpenBallotsCommand(store, logger),
		commands.NewVoteCommand(store, publisher, notifier, userRepository, logger),
		commands.NewCloseBallotCommand(store, publisher, notifier, resolver, logger),
		commands.NewResultsCommand(store, logger),
	})

	tgbot.NewBot(api, handler).Start(config, logger)
}
