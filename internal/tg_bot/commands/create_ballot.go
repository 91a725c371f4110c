package commands

import (
	"ballot_system/internal/ballot"
	"ballot_system/internal/db/models"
	"ballot_system/internal/db/repositories"
	tgbot "ballot_system/internal/tg_bot/extension"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	createBallotCommandName = "create_ballot"

	waitingForDescriptionState = "waiting_for_description"
	waitingForChoicesState     = "waiting_for_choices"
	waitingForAssessmentState  = "waiting_for_assessment"
	waitingForVisibilityState  = "waiting_for_visibility"
	waitingForConfirmState     = "waiting_for_confirm"
)

var (
	assessmentSingle = "One answer"
	assessmentMulti  = "Several answers"

	visibilityLive    = "Show results while voting"
	visibilityOnClose = "Show results after closing"

	confirmYes = "Yes"
	confirmNo  = "No, start over"
)

type createBallotCommand struct {
	store          *ballot.Store
	publisher      *ballot.Publisher
	notifier       *ballot.Notifier
	userRepository repositories.UserRepository
	logger         *zap.SugaredLogger
}

func NewCreateBallotCommand(
	store *ballot.Store,
	publisher *ballot.Publisher,
	notifier *ballot.Notifier,
	userRepository repositories.UserRepository,
	logger *zap.SugaredLogger,
) Command {
	return &createBallotCommand{
		store:          store,
		publisher:      publisher,
		notifier:       notifier,
		userRepository: userRepository,
		logger:         logger,
	}
}

func (c *createBallotCommand) CanHandle(command string) bool {
	return command == createBallotCommandName
}

func (c *createBallotCommand) Handle(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	if text == createBallotCommandName {
		return c.handleCreateBallotCommand(user, chatID)
	}

	switch user.TelegramState.LastCommandState {
	case waitingForDescriptionState:
		return c.handleWaitingForDescriptionState(text, user, chatID)
	case waitingForChoicesState:
		return c.handleWaitingForChoicesState(text, user, chatID)
	case waitingForAssessmentState:
		return c.handleWaitingForAssessmentState(text, user, chatID)
	case waitingForVisibilityState:
		return c.handleWaitingForVisibilityState(text, user, chatID)
	case waitingForConfirmState:
		return c.handleWaitingForConfirmState(text, user, chatID)
	default:
		c.logger.Errorf("user has unknown state: %s", user.TelegramState.LastCommandState)
		return nil
	}
}

func (c *createBallotCommand) handleCreateBallotCommand(user *models.User, chatID int64) []tgbotapi.Chattable {
	user.TempDraft = models.BallotDraft{}

	user.TelegramState.LastCommandState = waitingForDescriptionState
	c.updateUser(user)

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "What is the ballot about? Send me the question.")}
}

func (c *createBallotCommand) handleWaitingForDescriptionState(description string, user *models.User, chatID int64) []tgbotapi.Chattable {
	description = strings.TrimSpace(description)
	if description == "" {
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "The question cannot be empty. Send me the question.")}
	}

	user.TempDraft.Description = description

	user.TelegramState.LastCommandState = waitingForChoicesState
	c.updateUser(user)

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "Now send the answers, one per line. At least two.")}
}

func (c *createBallotCommand) handleWaitingForChoicesState(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	var choices []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			choices = append(choices, line)
		}
	}

	if len(choices) < 2 {
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "A ballot needs at least two answers. Send them again, one per line.")}
	}

	user.TempDraft.Choices = choices

	user.TelegramState.LastCommandState = waitingForAssessmentState
	c.updateUser(user)

	message := tgbotapi.NewMessage(chatID, "How many answers may a voter pick?")
	message.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(assessmentSingle),
			tgbotapi.NewKeyboardButton(assessmentMulti),
		),
	)
	return []tgbotapi.Chattable{message}
}

func (c *createBallotCommand) handleWaitingForAssessmentState(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	switch text {
	case assessmentSingle:
		user.TempDraft.Assessment = models.BallotAssessmentSingleChoice
	case assessmentMulti:
		user.TempDraft.Assessment = models.BallotAssessmentMultipleChoice
	default:
		c.logger.Warnf("user sent unknown assessment: %s", text)
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "Please pick one of the two options from the keyboard.")}
	}

	user.TelegramState.LastCommandState = waitingForVisibilityState
	c.updateUser(user)

	message := tgbotapi.NewMessage(chatID, "When should voters see the results?")
	message.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(visibilityLive),
			tgbotapi.NewKeyboardButton(visibilityOnClose),
		),
	)
	return []tgbotapi.Chattable{message}
}

func (c *createBallotCommand) handleWaitingForVisibilityState(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	switch text {
	case visibilityLive:
		user.TempDraft.Type = models.BallotTypeIntermediate
	case visibilityOnClose:
		user.TempDraft.Type = models.BallotTypeResultOnClose
	default:
		c.logger.Warnf("user sent unknown visibility: %s", text)
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "Please pick one of the two options from the keyboard.")}
	}

	user.TempDraft.DisplayType = models.BallotDisplayTypeListMode

	user.TelegramState.LastCommandState = waitingForConfirmState
	c.updateUser(user)

	summary := fmt.Sprintf(
		"%s\n\n%s\n\nSend it to the chat?",
		user.TempDraft.Description,
		strings.Join(user.TempDraft.Choices, "\n"),
	)
	message := tgbotapi.NewMessage(chatID, summary)
	message.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(confirmYes),
			tgbotapi.NewKeyboardButton(confirmNo),
		),
	)
	return []tgbotapi.Chattable{message}
}

func (c *createBallotCommand) handleWaitingForConfirmState(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	switch text {
	case confirmNo:
		return c.handleCreateBallotCommand(user, chatID)
	case confirmYes:
	default:
		c.logger.Warnf("user sent unknown confirmation: %s", text)
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "Please pick one of the two options from the keyboard.")}
	}

	lifecycle := ballot.NewLifecycle(c.store, c.publisher, c.notifier, user.Identity, c.logger)

	draft := ballot.Draft{
		Description: user.TempDraft.Description,
		Choices:     user.TempDraft.Choices,
		Assessment:  user.TempDraft.Assessment,
		Type:        user.TempDraft.Type,
		DisplayType: user.TempDraft.DisplayType,
		Receiver:    ballot.GroupReceiver(int(chatID)),
	}

	created, err := lifecycle.Create(user.Identity, draft)
	if err != nil {
		c.logger.Errorw("failed to create ballot", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	if _, err = lifecycle.Publish(user.Identity, created.ID); err != nil {
		if errors.Is(err, ballot.ErrMessageTooLarge) {
			return []tgbotapi.Chattable{tgbot.ErrorMessage(chatID, "The ballot is too large to send. Trim the question or the answers and try again.")}
		}

		c.logger.Errorw("failed to publish ballot", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	user.TempDraft = models.BallotDraft{}
	user.TelegramState = models.TelegramState{}
	c.updateUser(user)

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "The ballot is open. Voting happens via /open_ballots.")}
}

func (c *createBallotCommand) updateUser(user *models.User) {
	if _, err := c.userRepository.Update(user); err != nil {
		c.logger.Errorw("failed to update user", "error", err)
	}
}
