package ballot

import (
	"testing"

	"ballot_system/internal/db/models"

	"github.com/stretchr/testify/assert"
)

func seedChoices(t *testing.T, f *fixture, ballotID int, names ...string) []*models.Choice {
	t.Helper()
	choices := make([]*models.Choice, 0, len(names))
	for i, name := range names {
		choice, err := f.store.CreateChoice(&models.Choice{
			BallotID:    ballotID,
			APIChoiceID: i,
			Name:        name,
			SortOrder:   i,
		})
		assert.NoError(t, err)
		choices = append(choices, choice)
	}
	return choices
}

func castVotes(t *testing.T, f *fixture, ballotID int, identity string, values map[int]int) {
	t.Helper()
	rows := make([]*models.Vote, 0, len(values))
	for choiceID, value := range values {
		rows = append(rows, &models.Vote{
			BallotID:       ballotID,
			ChoiceID:       choiceID,
			VotingIdentity: identity,
			Value:          value,
		})
	}
	assert.NoError(t, f.store.ReplaceVotes(ballotID, identity, nil, rows))
}

func TestPublisher_BuildSetupWithoutResults(t *testing.T) {
	f := newFixture()
	ballot := seedBallot(t, f, localID)
	seedChoices(t, f, ballot.ID, "Pizza", "Sushi")

	message, err := f.publisher().BuildSetup(ballot, false)
	assert.NoError(t, err)

	assert.Equal(t, ballot.APIBallotID, message.APIBallotID)
	assert.Equal(t, WireStateOpen, message.State)
	assert.Empty(t, message.Participants)
	assert.Len(t, message.Choices, 2)
	assert.Nil(t, message.Choices[0].Results)
}

func TestPublisher_BuildSetupRequiresTwoChoices(t *testing.T) {
	f := newFixture()
	ballot := seedBallot(t, f, localID)
	seedChoices(t, f, ballot.ID, "Pizza")

	_, err := f.publisher().BuildSetup(ballot, false)
	assert.ErrorIs(t, err, ErrNotEnoughChoices)
}

func TestPublisher_ResultOrderFollowsFirstVoteAppearance(t *testing.T) {
	f := newFixture()
	ballot := seedBallot(t, f, localID)
	choices := seedChoices(t, f, ballot.ID, "Pizza", "Sushi")

	// CCCC votes first, then AAAA: the result arrays must list CCCC before
	// AAAA even though AAAA sorts first alphabetically.
	castVotes(t, f, ballot.ID, anotherID, map[int]int{choices[0].ID: 1, choices[1].ID: 0})
	castVotes(t, f, ballot.ID, localID, map[int]int{choices[0].ID: 0, choices[1].ID: 1})

	ballot.State = models.BallotStateClosed
	message, err := f.publisher().BuildSetup(ballot, true)
	assert.NoError(t, err)

	assert.Equal(t, WireStateClosed, message.State)
	assert.Equal(t, []string{anotherID, localID}, message.Participants)
	assert.Equal(t, []int{1, 0}, message.Choices[0].Results)
	assert.Equal(t, []int{0, 1}, message.Choices[1].Results)
}

func TestPublisher_SummaryModeTotals(t *testing.T) {
	f := newFixture()
	ballot := seedBallot(t, f, localID)
	ballot.DisplayType = models.BallotDisplayTypeSummaryMode
	_, err := f.store.UpdateBallot(ballot)
	assert.NoError(t, err)

	choices := seedChoices(t, f, ballot.ID, "Pizza", "Sushi")
	castVotes(t, f, ballot.ID, peerID, map[int]int{choices[0].ID: 1, choices[1].ID: 1})
	castVotes(t, f, ballot.ID, anotherID, map[int]int{choices[0].ID: 1, choices[1].ID: 0})

	ballot.State = models.BallotStateClosed
	message, err := f.publisher().BuildSetup(ballot, true)
	assert.NoError(t, err)

	assert.Equal(t, 2, message.Choices[0].TotalVotes)
	assert.Equal(t, 1, message.Choices[1].TotalVotes)
}

func TestPublisher_PublishSetupIncludesResultsForRecipientSubset(t *testing.T) {
	f := newFixture()
	ballot := seedBallot(t, f, localID)
	seedChoices(t, f, ballot.ID, "Pizza", "Sushi")

	err := f.publisher().PublishSetup(ballot, GroupReceiver(7), []string{peerID}, TriggerLocal)
	assert.NoError(t, err)

	assert.Len(t, f.receiver.setups, 1)
	assert.NotNil(t, f.receiver.setups[0].Choices[0].Results, "a targeted disclosure carries results")
	assert.Equal(t, []string{peerID}, f.receiver.setupReceivers[0])
}

func TestPublisher_PublishVoteCarriesFullArray(t *testing.T) {
	f := newFixture()
	ballot := seedBallot(t, f, localID)

	votes := []VoteChoice{{APIChoiceID: 0, Value: 1}, {APIChoiceID: 1, Value: 0}}
	err := f.publisher().PublishVote(ballot, GroupReceiver(7), localID, votes, TriggerLocal)
	assert.NoError(t, err)

	assert.Len(t, f.receiver.votes, 1)
	sent := f.receiver.votes[0]
	assert.Equal(t, ballot.APIBallotID, sent.APIBallotID)
	assert.Equal(t, localID, sent.VotingIdentity)
	assert.Equal(t, votes, sent.Votes)
}
