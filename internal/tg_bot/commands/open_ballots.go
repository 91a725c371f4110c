package commands

import (
	"ballot_system/internal/ballot"
	"ballot_system/internal/db/models"
	tgbot "ballot_system/internal/tg_bot/extension"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const openBallotsCommandName = "open_ballots"

type openBallotsCommand struct {
	store  *ballot.Store
	logger *zap.SugaredLogger
}

func NewOpenBallotsCommand(store *ballot.Store, logger *zap.SugaredLogger) Command {
	return &openBallotsCommand{store: store, logger: logger}
}

func (c *openBallotsCommand) CanHandle(command string) bool {
	return command == openBallotsCommandName
}

func (c *openBallotsCommand) Handle(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	ballots, err := c.store.BallotsForReceiver(ballot.GroupReceiver(int(chatID)), models.BallotStateOpen)
	if err != nil {
		c.logger.Errorw("failed to get open ballots", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	if len(ballots) == 0 {
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "There are no open ballots in this chat.")}
	}

	messages := make([]tgbotapi.Chattable, 0, len(ballots))
	for _, b := range ballots {
		choices, err := c.store.Choices(b.ID)
		if err != nil {
			c.logger.Errorw("failed to get choices", "error", err, "ballotID", b.ID)
			continue
		}

		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
		for _, choice := range choices {
			data := fmt.Sprintf("vote:%d:%d", b.ID, choice.APIChoiceID)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(choice.Name, data)))
		}

		message := tgbotapi.NewMessage(chatID, b.Description)
		message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		messages = append(messages, message)

		if err := c.store.MarkViewed(b.ID); err != nil {
			c.logger.Errorw("failed to mark ballot viewed", "error", err, "ballotID", b.ID)
		}
	}

	return messages
}
