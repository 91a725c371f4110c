package ballot

import (
	"testing"

	"ballot_system/internal/db/models"

	"github.com/stretchr/testify/assert"
)

func twoChoices() []*models.Choice {
	return []*models.Choice{
		{ID: 10, BallotID: 1, APIChoiceID: 0, Name: "Pizza", SortOrder: 0},
		{ID: 11, BallotID: 1, APIChoiceID: 1, Name: "Sushi", SortOrder: 1},
	}
}

func vote(choiceID int, identity string, value int) *models.Vote {
	return &models.Vote{BallotID: 1, ChoiceID: choiceID, VotingIdentity: identity, Value: value}
}

func TestMatrix_SingleChoiceTally(t *testing.T) {
	participants := []string{"AAAA", "BBBB", "CCCC"}
	votes := []*models.Vote{
		vote(10, "AAAA", 1), vote(11, "AAAA", 0),
		vote(10, "BBBB", 0), vote(11, "BBBB", 1),
		vote(10, "CCCC", 1), vote(11, "CCCC", 0),
	}

	m := NewMatrix(participants, twoChoices(), votes)

	assert.Equal(t, 2, m.VoteCount(10))
	assert.Equal(t, 1, m.VoteCount(11))

	winners := m.Winners()
	assert.Len(t, winners, 1)
	assert.Equal(t, "Pizza", winners[0].Name)
}

func TestMatrix_MultipleChoiceTie(t *testing.T) {
	participants := []string{"AAAA", "BBBB", "CCCC"}
	votes := []*models.Vote{
		vote(10, "AAAA", 1), vote(11, "AAAA", 0),
		vote(10, "BBBB", 0), vote(11, "BBBB", 1),
		vote(10, "CCCC", 1), vote(11, "CCCC", 1),
	}

	m := NewMatrix(participants, twoChoices(), votes)

	assert.Equal(t, 2, m.VoteCount(10))
	assert.Equal(t, 2, m.VoteCount(11))

	winners := m.Winners()
	assert.Len(t, winners, 2)
}

func TestMatrix_NoVotesNoWinner(t *testing.T) {
	m := NewMatrix([]string{"AAAA", "BBBB"}, twoChoices(), nil)

	assert.Equal(t, 0, m.VoteCount(10))
	assert.Equal(t, 0, m.VoteCount(11))
	assert.Empty(t, m.Winners())
}

func TestMatrix_AllZeroVotesCountAsVotedButNotSelected(t *testing.T) {
	participants := []string{"AAAA", "BBBB"}
	votes := []*models.Vote{
		vote(10, "AAAA", 0), vote(11, "AAAA", 0),
	}

	m := NewMatrix(participants, twoChoices(), votes)

	assert.True(t, m.HasVoted("AAAA"))
	assert.False(t, m.Selected("AAAA", 10))
	assert.False(t, m.Selected("AAAA", 11))
	assert.False(t, m.HasVoted("BBBB"))
	assert.Empty(t, m.Winners())
}

func TestMatrix_VoteCountMatchesSelectedParticipants(t *testing.T) {
	participants := []string{"AAAA", "BBBB", "CCCC", "DDDD"}
	votes := []*models.Vote{
		vote(10, "AAAA", 1),
		vote(10, "BBBB", 2), // any positive value counts as selected
		vote(10, "CCCC", 0),
	}

	m := NewMatrix(participants, twoChoices(), votes)

	selected := 0
	for _, identity := range participants {
		if m.Selected(identity, 10) {
			selected++
		}
	}
	assert.Equal(t, selected, m.VoteCount(10))
	assert.Equal(t, 2, m.VoteCount(10))
}

func TestMatrix_SkipsUnknownParticipantsAndChoices(t *testing.T) {
	participants := []string{"AAAA"}
	votes := []*models.Vote{
		vote(10, "AAAA", 1),
		vote(10, "GONE", 1),  // departed participant
		vote(999, "AAAA", 1), // deleted choice
	}

	m := NewMatrix(participants, twoChoices(), votes)

	assert.Equal(t, 1, m.VoteCount(10))
	assert.False(t, m.HasVoted("GONE"))
	assert.False(t, m.Selected("AAAA", 999))
}
