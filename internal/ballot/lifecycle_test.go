package ballot

import (
	"testing"

	"ballot_system/internal/db/models"

	"github.com/stretchr/testify/assert"
)

const (
	localID   = "AAAAAAAA"
	peerID    = "BBBBBBBB"
	anotherID = "CCCCCCCC"
)

func pizzaDraft() Draft {
	return Draft{
		Description: "Lunch?",
		Choices:     []string{"Pizza", "Sushi"},
		Assessment:  models.BallotAssessmentSingleChoice,
		Type:        models.BallotTypeIntermediate,
		DisplayType: models.BallotDisplayTypeListMode,
		Receiver:    GroupReceiver(7),
	}
}

func createOpenBallot(t *testing.T, f *fixture, lifecycle *Lifecycle) *models.Ballot {
	t.Helper()

	ballot, err := lifecycle.Create(localID, pizzaDraft())
	assert.NoError(t, err)

	_, err = lifecycle.Publish(localID, ballot.ID)
	assert.NoError(t, err)

	ballot, err = f.store.Ballot(ballot.ID)
	assert.NoError(t, err)
	return ballot
}

func TestLifecycle_CreateRequiresLocalUser(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)

	_, err := lifecycle.Create(peerID, pizzaDraft())
	assert.ErrorIs(t, err, ErrNotAllowed)

	noIdentity := f.lifecycle("")
	_, err = noIdentity.Create("", pizzaDraft())
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestLifecycle_CreateDraftsTemporaryBallot(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)

	ballot, err := lifecycle.Create(localID, pizzaDraft())
	assert.NoError(t, err)
	assert.Equal(t, models.BallotStateTemporary, ballot.State)
	assert.NotEmpty(t, ballot.APIBallotID)

	choices, err := f.store.Choices(ballot.ID)
	assert.NoError(t, err)
	assert.Len(t, choices, 2)
	assert.Equal(t, "Pizza", choices[0].Name)

	link, err := f.store.Link(ballot.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.LinkKindGroup, link.Kind())
	assert.Equal(t, 7, link.GroupID)

	assert.Equal(t, []EventKind{EventBallotCreated}, f.events.kinds())
	assert.Empty(t, f.receiver.setups, "creating a draft must not send anything")
}

func TestLifecycle_PublishOpensAndSends(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)

	ballot, err := lifecycle.Create(localID, pizzaDraft())
	assert.NoError(t, err)

	event, err := lifecycle.Publish(localID, ballot.ID)
	assert.NoError(t, err)
	assert.Equal(t, EventBallotModified, event.Kind)

	stored, err := f.store.Ballot(ballot.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.BallotStateOpen, stored.State)

	assert.Len(t, f.receiver.setups, 1)
	sent := f.receiver.setups[0]
	assert.Equal(t, WireStateOpen, sent.State)
	assert.Len(t, sent.Choices, 2)
	assert.Empty(t, sent.Participants, "initial publish carries no results")
}

func TestLifecycle_PublishOnlyByCreator(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)

	ballot, err := lifecycle.Create(localID, pizzaDraft())
	assert.NoError(t, err)

	_, err = lifecycle.Publish(peerID, ballot.ID)
	assert.ErrorIs(t, err, ErrNotAllowed)

	stored, _ := f.store.Ballot(ballot.ID)
	assert.Equal(t, models.BallotStateTemporary, stored.State)
}

func TestLifecycle_PublishRollsBackOnOversizedMessage(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)

	ballot, err := lifecycle.Create(localID, pizzaDraft())
	assert.NoError(t, err)

	f.receiver.setupErr = ErrMessageTooLarge
	_, err = lifecycle.Publish(localID, ballot.ID)
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	stored, err := f.store.Ballot(ballot.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.BallotStateTemporary, stored.State, "failed publish must leave the ballot temporary")
}

func TestLifecycle_PublishNeedsTwoChoices(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)

	draft := pizzaDraft()
	draft.Choices = []string{"Pizza"}
	ballot, err := lifecycle.Create(localID, draft)
	assert.NoError(t, err)

	_, err = lifecycle.Publish(localID, ballot.ID)
	assert.ErrorIs(t, err, ErrNotEnoughChoices)

	stored, _ := f.store.Ballot(ballot.ID)
	assert.Equal(t, models.BallotStateTemporary, stored.State)
}

func TestLifecycle_CloseOnlyByCreator(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)
	ballot := createOpenBallot(t, f, lifecycle)

	_, err := lifecycle.Close(peerID, ballot.ID)
	assert.ErrorIs(t, err, ErrNotAllowed)

	stored, _ := f.store.Ballot(ballot.ID)
	assert.Equal(t, models.BallotStateOpen, stored.State, "rejected close must not change state")
}

func TestLifecycle_CloseSendsResults(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)
	ballot := createOpenBallot(t, f, lifecycle)

	_, err := lifecycle.Vote(localID, ballot.ID, map[int]int{0: 1})
	assert.NoError(t, err)

	event, err := lifecycle.Close(localID, ballot.ID)
	assert.NoError(t, err)
	assert.Equal(t, EventBallotClosed, event.Kind)

	stored, _ := f.store.Ballot(ballot.ID)
	assert.Equal(t, models.BallotStateClosed, stored.State)

	sent := f.receiver.setups[len(f.receiver.setups)-1]
	assert.Equal(t, WireStateClosed, sent.State)
	assert.Equal(t, []string{localID}, sent.Participants)
	assert.Equal(t, []int{1}, sent.Choices[0].Results)
	assert.Equal(t, []int{0}, sent.Choices[1].Results)
}

func TestLifecycle_CloseStaysClosedOnOversizedMessage(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)
	ballot := createOpenBallot(t, f, lifecycle)

	f.receiver.setupErr = ErrMessageTooLarge
	_, err := lifecycle.Close(localID, ballot.ID)
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	stored, _ := f.store.Ballot(ballot.ID)
	assert.Equal(t, models.BallotStateClosed, stored.State, "local closure is authoritative once persisted")
}

func TestLifecycle_VoteWhileOpen(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)
	ballot := createOpenBallot(t, f, lifecycle)

	event, err := lifecycle.Vote(localID, ballot.ID, map[int]int{0: 1})
	assert.NoError(t, err)
	assert.Equal(t, EventSelfVoted, event.Kind)
	assert.Equal(t, localID, event.VotingIdentity)

	votes, err := f.store.VotesForVoter(ballot.ID, localID)
	assert.NoError(t, err)
	assert.Len(t, votes, 2, "the full array materializes one row per choice")

	assert.Len(t, f.receiver.votes, 1)
	assert.Len(t, f.receiver.votes[0].Votes, 2)
}

func TestLifecycle_VoteOnClosedBallotIsIgnored(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)
	ballot := createOpenBallot(t, f, lifecycle)

	_, err := lifecycle.Close(localID, ballot.ID)
	assert.NoError(t, err)

	before := len(f.receiver.votes)
	event, err := lifecycle.Vote(localID, ballot.ID, map[int]int{0: 1})
	assert.NoError(t, err, "late votes are acknowledged, not errors")
	assert.Equal(t, Event{}, event)
	assert.Len(t, f.receiver.votes, before, "nothing is sent for an ignored vote")

	votes, _ := f.store.VotesForVoter(ballot.ID, localID)
	assert.Empty(t, votes)
}

func TestLifecycle_VoteBeforeOpenNotAllowed(t *testing.T) {
	f := newFixture()
	lifecycle := f.lifecycle(localID)

	ballot, err := lifecycle.Create(localID, pizzaDraft())
	assert.NoError(t, err)

	_, err = lifecycle.Vote(localID, ballot.ID, map[int]int{0: 1})
	assert.ErrorIs(t, err, ErrNotAllowed)
}
