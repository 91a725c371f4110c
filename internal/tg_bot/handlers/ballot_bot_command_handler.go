package handlers

import (
	"ballot_system/internal/db/models"
	"ballot_system/internal/db/repositories"
	"ballot_system/internal/tg_bot/commands"
	tgbot "ballot_system/internal/tg_bot/extension"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ballotBotCommandHandler struct {
	userRepository repositories.UserRepository
	logger         *zap.SugaredLogger

	commands []commands.Command
}

func NewBallotBotCommandHandler(
	userRepository repositories.UserRepository,
	logger *zap.SugaredLogger,
	commands []commands.Command,
) CommandHandler {
	return &ballotBotCommandHandler{
		userRepository: userRepository,
		logger:         logger,
		commands:       commands,
	}
}

func (h *ballotBotCommandHandler) Handle(update tgbotapi.Update) []tgbotapi.Chattable {
	message := update.Message
	callbackQuery := update.CallbackQuery

	if message == nil && callbackQuery == nil {
		h.logger.Warn("received unknown update")
		return []tgbotapi.Chattable{}
	}

	var (
		chatID       int64
		telegramUser *tgbotapi.User
	)

	if message != nil {
		chatID = message.Chat.ID
		telegramUser = message.From
	} else {
		chatID = callbackQuery.Message.Chat.ID
		telegramUser = callbackQuery.From
	}

	user, errMessage := h.createUserIfNeeded(telegramUser, chatID)
	if errMessage != nil {
		return []tgbotapi.Chattable{errMessage}
	}

	if message != nil {
		if message.IsCommand() {
			return h.tryToHandleCommand(message.Command(), user, chatID)
		} else if user.TelegramState.LastCommand != "" {
			return h.tryToHandleSubCommand(user.TelegramState.LastCommand, message.Text, user, chatID)
		}
	}

	if callbackQuery != nil {
		return h.tryToHandleQueryCallback(callbackQuery.Data, user, chatID)
	}

	h.logger.Error("received unknown message")
	return []tgbotapi.Chattable{}
}

// Every chat user gets a row with a fresh messaging identity on first
// contact. The identity, not the telegram id, is what ballots key on.
func (h *ballotBotCommandHandler) createUserIfNeeded(telegramUser *tgbotapi.User, chatID int64) (*models.User, tgbotapi.Chattable) {
	user, err := h.userRepository.GetOneByTelegramID(telegramUser.ID)
	if err != nil {
		h.logger.Errorw("failed to get user", "error", err)
		return nil, tgbot.DefaultErrorMessage(chatID)
	}

	if user == nil {
		user = &models.User{
			Name:             strings.TrimSpace(telegramUser.FirstName + " " + telegramUser.LastName),
			Identity:         uuid.NewString(),
			TelegramID:       telegramUser.ID,
			TelegramNickname: telegramUser.UserName,
		}

		user, err = h.userRepository.Create(user)
		if err != nil {
			h.logger.Errorw("failed to create user", "error", err)
			return nil, tgbot.DefaultErrorMessage(chatID)
		}
	}

	return user, nil
}

func (h *ballotBotCommandHandler) tryToHandleCommand(command string, user *models.User, chatID int64) []tgbotapi.Chattable {
	for _, handler := range h.commands {
		if handler.CanHandle(command) {
			user.TelegramState.LastCommand = command
			user.TelegramState.LastCommandState = ""

			user, err := h.userRepository.Update(user)
			if err != nil {
				h.logger.Errorw("failed to update user", "error", err)
			}

			return handler.Handle(command, user, chatID)
		}
	}

	h.logger.Errorf("received unknown command: %s", command)
	return []tgbotapi.Chattable{}
}

func (h *ballotBotCommandHandler) tryToHandleSubCommand(command, subCommand string, user *models.User, chatID int64) []tgbotapi.Chattable {
	command = strings.Split(command, ":")[0]

	for _, handler := range h.commands {
		if handler.CanHandle(command) {
			responseMessage := handler.Handle(subCommand, user, chatID)
			if responseMessage == nil {
				h.logger.Errorf("failed to handle subcommand: %s", subCommand)
				break
			}

			return responseMessage
		}
	}

	h.logger.Errorf("received unknown subcommand: %s for command: %s", subCommand, command)
	return []tgbotapi.Chattable{}
}

func (h *ballotBotCommandHandler) tryToHandleQueryCallback(query string, user *models.User, chatID int64) []tgbotapi.Chattable {
	parts := strings.Split(query, ":")
	if len(parts) == 0 {
		h.logger.Error("received empty query callback")
		return []tgbotapi.Chattable{}
	}

	command := parts[0]

	for _, handler := range h.commands {
		if handler.CanHandle(command) {
			user.TelegramState.LastCommand = query

			user, err := h.userRepository.Update(user)
			if err != nil {
				h.logger.Errorw("failed to update user", "error", err)
			}

			return handler.Handle(query, user, chatID)
		}
	}

	h.logger.Errorf("received unknown command: %s", command)
	return []tgbotapi.Chattable{}
}
