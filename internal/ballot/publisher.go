package ballot

import (
	"fmt"

	"ballot_system/internal/db/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher serializes local ballot state into outgoing wire payloads and
// hands them to the transport. It never persists anything itself.
type Publisher struct {
	store    *Store
	receiver MessageReceiver
	logger   *zap.SugaredLogger
}

func NewPublisher(store *Store, receiver MessageReceiver, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{
		store:    store,
		receiver: receiver,
		logger:   logger,
	}
}

// BuildSetup serializes a ballot and its choices. With includeResults set the
// message additionally carries one participant-ordered value array per
// choice; the participant order is the order of first appearance among the
// participants that have voted, not creation or alphabetical order.
func (p *Publisher) BuildSetup(ballot *models.Ballot, includeResults bool) (*SetupMessage, error) {
	choices, err := p.store.Choices(ballot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load choices: %w", err)
	}
	if len(choices) < 2 {
		return nil, ErrNotEnoughChoices
	}

	message := &SetupMessage{
		APIBallotID:     ballot.APIBallotID,
		CreatorIdentity: ballot.CreatorIdentity,
		Description:     ballot.Description,
		State:           stateToWire(ballot.State),
		Assessment:      assessmentToWire(ballot.Assessment),
		Type:            typeToWire(ballot.Type),
		ChoiceType:      choiceTypeToWire(ballot.ChoiceType),
		DisplayType:     displayTypeToWire(ballot.DisplayType),
		CreatedAt:       ballot.CreatedAt,
	}

	var (
		votes        []*models.Vote
		participants []string
		valueByCell  map[matrixCell]int
	)
	if includeResults {
		votes, err = p.store.Votes(ballot.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load votes: %w", err)
		}
		participants = votedParticipants(votes)
		message.Participants = participants

		valueByCell = make(map[matrixCell]int, len(votes))
		participantIndex := make(map[string]int, len(participants))
		for i, identity := range participants {
			participantIndex[identity] = i
		}
		for _, vote := range votes {
			valueByCell[matrixCell{participantIndex[vote.VotingIdentity], vote.ChoiceID}] = vote.Value
		}
	}

	for _, choice := range choices {
		setupChoice := SetupChoice{
			APIChoiceID: choice.APIChoiceID,
			Name:        choice.Name,
			SortOrder:   choice.SortOrder,
		}
		if includeResults {
			setupChoice.Results = make([]int, len(participants))
			for i := range participants {
				setupChoice.Results[i] = valueByCell[matrixCell{i, choice.ID}]
			}
			if ballot.DisplayType == models.BallotDisplayTypeSummaryMode {
				total := 0
				for _, value := range setupChoice.Results {
					if value > 0 {
						total++
					}
				}
				setupChoice.TotalVotes = total
			}
		}
		message.Choices = append(message.Choices, setupChoice)
	}

	return message, nil
}

// PublishSetup sends the ballot's setup message. Results are included when
// closing, or when a specific recipient subset asked for disclosure.
func (p *Publisher) PublishSetup(ballot *models.Ballot, ref ReceiverRef, recipients []string, trigger TriggerSource) error {
	includeResults := ballot.IsClosed() || len(recipients) > 0

	message, err := p.BuildSetup(ballot, includeResults)
	if err != nil {
		return err
	}

	messageID := uuid.NewString()
	p.logger.Debugw("sending ballot setup",
		"apiBallotID", ballot.APIBallotID,
		"state", ballot.State,
		"messageID", messageID,
	)
	return p.receiver.CreateAndSendBallotSetupMessage(message, ref, messageID, recipients, trigger)
}

// PublishVote sends the local voter's complete vote array for the ballot.
func (p *Publisher) PublishVote(ballot *models.Ballot, ref ReceiverRef, votingIdentity string, votes []VoteChoice, trigger TriggerSource) error {
	message := &VoteMessage{
		APIBallotID:     ballot.APIBallotID,
		CreatorIdentity: ballot.CreatorIdentity,
		VotingIdentity:  votingIdentity,
		Votes:           votes,
	}

	p.logger.Debugw("sending ballot vote",
		"apiBallotID", ballot.APIBallotID,
		"voter", votingIdentity,
	)
	return p.receiver.CreateAndSendBallotVoteMessage(message, ref, trigger)
}

// votedParticipants returns the distinct identities that cast at least one
// vote, in order of first appearance in the vote list.
func votedParticipants(votes []*models.Vote) []string {
	seen := make(map[string]struct{}, len(votes))
	participants := make([]string, 0, len(votes))
	for _, vote := range votes {
		if _, ok := seen[vote.VotingIdentity]; ok {
			continue
		}
		seen[vote.VotingIdentity] = struct{}{}
		participants = append(participants, vote.VotingIdentity)
	}
	return participants
}

// NewAPIBallotID mints the wire-stable id for a locally created ballot.
func NewAPIBallotID() string {
	return uuid.NewString()
}
