package commands

import (
	"ballot_system/internal/db/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const startCommandName = "start"

type startCommand struct {
	logger *zap.SugaredLogger
}

func NewStartCommand(logger *zap.SugaredLogger) Command {
	return &startCommand{logger: logger}
}

func (c *startCommand) CanHandle(command string) bool {
	return command == startCommandName
}

func (c *startCommand) Handle(text string, user *models.User, chatID int64) []tgbotapi.Chattable {
	message := tgbotapi.NewMessage(chatID, `
Hi! I run ballots for this chat. Here is what I can do:

/create_ballot - draft a new ballot and send it to the chat.
/open_ballots - list the ballots that are currently open for voting.
/close_ballot - close one of your own ballots and publish its results.
/results - show the tally of a closed ballot.
`)
	return []tgbotapi.Chattable{message}
}
