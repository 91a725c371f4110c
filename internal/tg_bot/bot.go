package tgbot

import (
	"ballot_system/configs"
	"ballot_system/internal/tg_bot/handlers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type bot struct {
	api     *tgbotapi.BotAPI
	handler handlers.CommandHandler
}

type Bot interface {
	Start(config configs.BallotBotConfig, logger *zap.SugaredLogger)
}

func NewBot(api *tgbotapi.BotAPI, handler handlers.CommandHandler) Bot {
	return &bot{api: api, handler: handler}
}

func (b *bot) Start(config configs.BallotBotConfig, logger *zap.SugaredLogger) {
	b.api.Debug = config.App.IsDevEnvironment()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = config.Bot.UpdateTimeout

	logger.Info("bot started")

	for update := range b.api.GetUpdatesChan(u) {
		for _, message := range b.handler.Handle(update) {
			if _, err := b.api.Send(message); err != nil {
				logger.Errorf("failed to send message: %v", err)
			}
		}
	}
}
