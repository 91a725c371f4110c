package extension

import (
	"ballot_system/internal/ballot"
	"ballot_system/internal/db/models"
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegram caps message text at 4096 characters
const maxMessageLength = 4096

// MessageReceiver delivers serialized ballot messages to the telegram chat
// the ballot is linked to. Group receivers map to chat ids; a contact
// receiver has no chat here and is dropped with a warning.
type messageReceiver struct {
	api    *tgbotapi.BotAPI
	logger *zap.SugaredLogger
}

func NewMessageReceiver(api *tgbotapi.BotAPI, logger *zap.SugaredLogger) ballot.MessageReceiver {
	return &messageReceiver{api: api, logger: logger}
}

func (r *messageReceiver) CreateAndSendBallotSetupMessage(
	data *ballot.SetupMessage,
	ref ballot.ReceiverRef,
	messageID string,
	receivers []string,
	trigger ballot.TriggerSource,
) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return r.send(ref, payload)
}

func (r *messageReceiver) CreateAndSendBallotVoteMessage(
	data *ballot.VoteMessage,
	ref ballot.ReceiverRef,
	trigger ballot.TriggerSource,
) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return r.send(ref, payload)
}

func (r *messageReceiver) send(ref ballot.ReceiverRef, payload []byte) error {
	if len(payload) > maxMessageLength {
		return ballot.ErrMessageTooLarge
	}

	if ref.Kind != models.LinkKindGroup {
		r.logger.Warnw("no chat for receiver, dropping message", "kind", ref.Kind)
		return nil
	}

	message := tgbotapi.NewMessage(int64(ref.GroupID), string(payload))
	_, err := r.api.Send(message)
	return err
}
