package commands

import (
	"ballot_system/internal/ballot"
	"ballot_system/internal/db/models"
	tgbot "ballot_system/internal/tg_bot/extension"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const resultsCommandName = "results"

type resultsCommand struct {
	store  *ballot.Store
	logger *zap.SugaredLogger
}

func NewResultsCommand(store *ballot.Store, logger *zap.SugaredLogger) Command {
	return &resultsCommand{store: store, logger: logger}
}

func (c *resultsCommand) CanHandle(command string) bool {
	return command == resultsCommandName
}

func (c *resultsCommand) Handle(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	if text == resultsCommandName {
		return c.handleResultsCommand(chatID)
	}

	parts := strings.Split(text, ":")
	if len(parts) != 2 || parts[0] != resultsCommandName {
		c.logger.Warnf("received malformed results callback: %s", text)
		return []tgbotapi.Chattable{}
	}

	ballotID, err := strconv.Atoi(parts[1])
	if err != nil {
		c.logger.Warnf("received malformed ballot id: %s", parts[1])
		return []tgbotapi.Chattable{}
	}

	return c.handleResultsCallback(ballotID, chatID)
}

func (c *resultsCommand) handleResultsCommand(chatID int64) []tgbotapi.Chattable {
	ballots, err := c.store.BallotsForReceiver(ballot.GroupReceiver(int(chatID)), models.BallotStateClosed)
	if err != nil {
		c.logger.Errorw("failed to get closed ballots", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	if len(ballots) == 0 {
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "There are no closed ballots in this chat.")}
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(ballots))
	for _, b := range ballots {
		data := fmt.Sprintf("%s:%d", resultsCommandName, b.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Description, data)))
	}

	message := tgbotapi.NewMessage(chatID, "Which ballot do you want the results of?")
	message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return []tgbotapi.Chattable{message}
}

func (c *resultsCommand) handleResultsCallback(ballotID int, chatID int64) []tgbotapi.Chattable {
	b, err := c.store.Ballot(ballotID)
	if err != nil {
		c.logger.Errorw("failed to get ballot", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}
	if b == nil {
		return []tgbotapi.Chattable{tgbot.ErrorMessage(chatID, "This ballot no longer exists.")}
	}

	matrix, choices, err := ballotTally(c.store, b)
	if err != nil {
		c.logger.Errorw("failed to tally ballot", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, renderTally(b, matrix, choices))}
}
