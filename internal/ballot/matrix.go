package ballot

import "ballot_system/internal/db/models"

type matrixCell struct {
	participant int
	choice      int
}

// Matrix is the participant-by-choice tally of one ballot, built from a flat
// vote list in O(V) and queried positionally. Votes referencing identities or
// choices outside the given axes are skipped rather than rejected, to
// tolerate participants that have left the conversation since voting.
type Matrix struct {
	participants     []string
	choices          []*models.Choice
	participantIndex map[string]int
	choiceIndex      map[int]int
	values           map[matrixCell]int
	voted            map[int]bool
}

// NewMatrix builds the tally for the given participant and choice axes from
// every vote row of the ballot.
func NewMatrix(participants []string, choices []*models.Choice, votes []*models.Vote) *Matrix {
	m := &Matrix{
		participants:     participants,
		choices:          choices,
		participantIndex: make(map[string]int, len(participants)),
		choiceIndex:      make(map[int]int, len(choices)),
		values:           make(map[matrixCell]int, len(votes)),
		voted:            make(map[int]bool),
	}

	for i, identity := range participants {
		m.participantIndex[identity] = i
	}
	for i, choice := range choices {
		m.choiceIndex[choice.ID] = i
	}

	for _, vote := range votes {
		participant, ok := m.participantIndex[vote.VotingIdentity]
		if !ok {
			continue
		}
		choice, ok := m.choiceIndex[vote.ChoiceID]
		if !ok {
			continue
		}
		m.values[matrixCell{participant, choice}] = vote.Value
		m.voted[participant] = true
	}

	return m
}

// HasVoted reports whether the participant has at least one vote row on the
// ballot, regardless of its value. An all-zero vote set still counts as
// having voted.
func (m *Matrix) HasVoted(identity string) bool {
	participant, ok := m.participantIndex[identity]
	if !ok {
		return false
	}
	return m.voted[participant]
}

// Selected reports whether the participant picked the choice. Any positive
// value counts as selected.
func (m *Matrix) Selected(identity string, choiceID int) bool {
	participant, ok := m.participantIndex[identity]
	if !ok {
		return false
	}
	choice, ok := m.choiceIndex[choiceID]
	if !ok {
		return false
	}
	return m.values[matrixCell{participant, choice}] > 0
}

// VoteCount returns the number of participants that selected the choice.
func (m *Matrix) VoteCount(choiceID int) int {
	choice, ok := m.choiceIndex[choiceID]
	if !ok {
		return 0
	}

	count := 0
	for participant := range m.participants {
		if m.values[matrixCell{participant, choice}] > 0 {
			count++
		}
	}
	return count
}

// Winners returns every choice whose count equals the maximum count, with
// ties reported in full. A ballot nobody voted on has no winner even though
// all choices tie at zero.
func (m *Matrix) Winners() []*models.Choice {
	max := 0
	counts := make([]int, len(m.choices))
	for i, choice := range m.choices {
		counts[i] = m.VoteCount(choice.ID)
		if counts[i] > max {
			max = counts[i]
		}
	}

	if max == 0 {
		return nil
	}

	winners := make([]*models.Choice, 0, 1)
	for i, choice := range m.choices {
		if counts[i] == max {
			winners = append(winners, choice)
		}
	}
	return winners
}
