package commands

import (
	"ballot_system/internal/ballot"
	"ballot_system/internal/db/models"
	"ballot_system/internal/db/repositories"
	tgbot "ballot_system/internal/tg_bot/extension"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const voteCommandName = "vote"

type voteCommand struct {
	store          *ballot.Store
	publisher      *ballot.Publisher
	notifier       *ballot.Notifier
	userRepository repositories.UserRepository
	logger         *zap.SugaredLogger
}

func NewVoteCommand(
	store *ballot.Store,
	publisher *ballot.Publisher,
	notifier *ballot.Notifier,
	userRepository repositories.UserRepository,
	logger *zap.SugaredLogger,
) Command {
	return &voteCommand{
		store:          store,
		publisher:      publisher,
		notifier:       notifier,
		userRepository: userRepository,
		logger:         logger,
	}
}

func (c *voteCommand) CanHandle(command string) bool {
	return command == voteCommandName
}

// Handle expects a callback of the form vote:<ballotID>:<choiceID>. Pressing
// a choice again on a multiple answer ballot retracts it.
func (c *voteCommand) Handle(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	parts := strings.Split(text, ":")
	if len(parts) != 3 || parts[0] != voteCommandName {
		c.logger.Warnf("received malformed vote callback: %s", text)
		return []tgbotapi.Chattable{}
	}

	ballotID, err := strconv.Atoi(parts[1])
	if err != nil {
		c.logger.Warnf("received malformed ballot id: %s", parts[1])
		return []tgbotapi.Chattable{}
	}

	apiChoiceID, err := strconv.Atoi(parts[2])
	if err != nil {
		c.logger.Warnf("received malformed choice id: %s", parts[2])
		return []tgbotapi.Chattable{}
	}

	b, err := c.store.Ballot(ballotID)
	if err != nil {
		c.logger.Errorw("failed to get ballot", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}
	if b == nil {
		return []tgbotapi.Chattable{tgbot.ErrorMessage(chatID, "This ballot no longer exists.")}
	}
	if !b.IsOpen() {
		return []tgbotapi.Chattable{tgbot.ErrorMessage(chatID, "This ballot is not open for voting.")}
	}

	selections, err := c.buildSelections(b, user.Identity, apiChoiceID)
	if err != nil {
		c.logger.Errorw("failed to build selections", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	lifecycle := ballot.NewLifecycle(c.store, c.publisher, c.notifier, user.Identity, c.logger)

	if _, err = lifecycle.Vote(user.Identity, ballotID, selections); err != nil {
		if errors.Is(err, ballot.ErrNotAllowed) {
			return []tgbotapi.Chattable{tgbot.ErrorMessage(chatID, "This ballot is not open for voting.")}
		}

		c.logger.Errorw("failed to vote", "error", err)
		return []tgbotapi.Chattable{tgbot.DefaultErrorMessage(chatID)}
	}

	user.TelegramState = models.TelegramState{}
	if _, err := c.userRepository.Update(user); err != nil {
		c.logger.Errorw("failed to update user", "error", err)
	}

	if b.Type == models.BallotTypeIntermediate {
		matrix, choices, err := ballotTally(c.store, b)
		if err != nil {
			c.logger.Errorw("failed to tally ballot", "error", err)
			return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "Vote recorded.")}
		}

		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, renderTally(b, matrix, choices))}
	}

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "Vote recorded. Results are published when the ballot closes.")}
}

// buildSelections turns a button press into the full selection set. A single
// answer ballot replaces whatever was selected before; a multiple answer
// ballot starts from the current selections and toggles the pressed choice.
func (c *voteCommand) buildSelections(b *models.Ballot, identity string, apiChoiceID int) (map[int]int, error) {
	selections := map[int]int{apiChoiceID: 1}

	if b.Assessment != models.BallotAssessmentMultipleChoice {
		return selections, nil
	}

	choices, err := c.store.Choices(b.ID)
	if err != nil {
		return nil, err
	}
	apiByChoiceID := make(map[int]int, len(choices))
	for _, choice := range choices {
		apiByChoiceID[choice.ID] = choice.APIChoiceID
	}

	votes, err := c.store.VotesForVoter(b.ID, identity)
	if err != nil {
		return nil, err
	}

	for _, vote := range votes {
		api, ok := apiByChoiceID[vote.ChoiceID]
		if !ok {
			continue
		}
		if api == apiChoiceID {
			if vote.Selected() {
				selections[api] = 0
			}
			continue
		}
		selections[api] = vote.Value
	}

	return selections, nil
}
