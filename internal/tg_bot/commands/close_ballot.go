package commands

import (
	"ballot_system/internal/ballot"
	"ballot_system/internal/db/models"
	tgbot "ballot_system/internal/tg_bot/extension"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const closeBallotCommandName = "close_ballot"

type closeBallotCommand struct {
	store     *ballot.Store
	publisher *ballot.Publisher
	notifier  *ballot.Notifier
	resolver  ballot.ParticipantResolver
	logger    *zap.SugaredLogger
}

func NewCloseBallotCommand(
	store *ballot.Store,
	publisher *ballot.Publisher,
	notifier *ballot.Notifier,
	resolver ballot.ParticipantResolver,
	logger *zap.SugaredLogger,
) Command {
	return &closeBallotCommand{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		resolver:  resolver,
		logger:    logger,
	}
}

func (c *closeBallotCommand) CanHandle(command string) bool {
	return command == closeBallotCommandName
}

func (c *closeBallotCommand) Handle(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	if text == closeBallotCommandName {
		return c.handleCloseBallotCommand(user, chatID)
	}

	parts := strings.Split(text, ":")
	if len(parts) != 2 || parts[0] != closeBallotCommandName {
		c.logger.Warnf("received malformed close callback: %s", text)
		return []tgbotapi.Chattable{}
	}

	ballotID, err := strconv.Atoi(parts[1])
	if err != nil {
		c.logger.Warnf("received malformed ballot id: %s", parts[1])
		return []tgbotapi.Chattable{}
	}

	return c.handleCloseCallback(ballotID, user, chatID)
}

func (c *closeBallotCommand) handleCloseBallotCommand(user *models.User, chatID int64) []tgbotapi.Chattable {
	ballots, err := c.store.BallotsForReceiver(ballot.GroupReceiver(int(chatID)), models.BallotStateOpen)
	if err != nil {
		c.logger.Errorw("failed to get open ballots", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range ballots {
		if !b.IsCreator(user.Identity) {
			continue
		}
		data := fmt.Sprintf("%s:%d", closeBallotCommandName, b.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Description, data)))
	}

	if len(rows) == 0 {
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "You have no open ballots in this chat.")}
	}

	message := tgbotapi.NewMessage(chatID, "Which ballot do you want to close?")
	message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return []tgbotapi.Chattable{message}
}

func (c *closeBallotCommand) handleCloseCallback(ballotID int, user *models.User, chatID int64) []tgbotapi.Chattable {
	recipients, err := ballot.GroupReceiver(int(chatID)).ResolveParticipants(c.resolver)
	if err != nil {
		c.logger.Errorw("failed to resolve participants", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	lifecycle := ballot.NewLifecycle(c.store, c.publisher, c.notifier, user.Identity, c.logger)

	if _, err = lifecycle.Close(user.Identity, ballotID, recipients...); err != nil {
		if errors.Is(err, ballot.ErrNotAllowed) {
			return []tgbotapi.Chattable{tgbot.ErrorMessage(chatID, "Only the creator can close a ballot.")}
		}

		c.logger.Errorw("failed to close ballot", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	b, err := c.store.Ballot(ballotID)
	if err != nil || b == nil {
		c.logger.Errorw("failed to get closed ballot", "error", err)
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "The ballot is closed.")}
	}

	matrix, choices, err := ballotTally(c.store, b)
	if err != nil {
		c.logger.Errorw("failed to tally ballot", "error", err)
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "The ballot is closed.")}
	}

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, renderTally(b, matrix, choices))}
}
