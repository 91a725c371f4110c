package commands

import (
	"ballot_system/internal/ballot"
	"ballot_system/internal/db/models"
	"fmt"
	"strings"
)

// ballotTally builds the tally matrix of a ballot over everyone that has a
// vote row on it.
func ballotTally(store *ballot.Store, b *models.Ballot) (*ballot.Matrix, []*models.Choice, error) {
	choices, err := store.Choices(b.ID)
	if err != nil {
		return nil, nil, err
	}

	votes, err := store.Votes(b.ID)
	if err != nil {
		return nil, nil, err
	}

	var participants []string
	seen := make(map[string]bool)
	for _, vote := range votes {
		if !seen[vote.VotingIdentity] {
			seen[vote.VotingIdentity] = true
			participants = append(participants, vote.VotingIdentity)
		}
	}

	return ballot.NewMatrix(participants, choices, votes), choices, nil
}

func renderTally(b *models.Ballot, matrix *ballot.Matrix, choices []*models.Choice) string {
	var lines []string
	lines = append(lines, b.Description, "")

	if b.DisplayType == models.BallotDisplayTypeSummaryMode {
		for _, choice := range choices {
			lines = append(lines, fmt.Sprintf("%s: %d", choice.Name, choice.TotalVotes))
		}
	} else {
		for _, choice := range choices {
			lines = append(lines, fmt.Sprintf("%s: %d", choice.Name, matrix.VoteCount(choice.ID)))
		}
	}

	winners := matrix.Winners()
	if len(winners) > 0 {
		names := make([]string, 0, len(winners))
		for _, winner := range winners {
			names = append(names, winner.Name)
		}
		lines = append(lines, "", "Leading: "+strings.Join(names, ", "))
	}

	return strings.Join(lines, "\n")
}
