package ballot

import (
	"fmt"
	"time"

	"ballot_system/internal/db/models"

	"go.uber.org/zap"
)

// applyVoteArray reconciles one voter's complete vote array against their
// stored vote set. The array fully specifies the voter's state: a stored vote
// not re-asserted by the array is deleted, a changed or new value is
// upserted, and both are applied as one logical operation. Entries naming a
// choice the ballot does not have are skipped; such a row has nothing to
// attach to, which happens when choices raced with deletion.
//
// The returned firstVote flag reports whether the voter had no votes on the
// ballot before this merge.
func applyVoteArray(store *Store, logger *zap.SugaredLogger, ballot *models.Ballot, votingIdentity string, votes []VoteChoice) (firstVote bool, err error) {
	existing, err := store.VotesForVoter(ballot.ID, votingIdentity)
	if err != nil {
		return false, fmt.Errorf("failed to load votes of %s: %w", votingIdentity, err)
	}
	firstVote = len(existing) == 0

	existingByChoice := make(map[int]*models.Vote, len(existing))
	for _, vote := range existing {
		existingByChoice[vote.ChoiceID] = vote
	}

	now := time.Now()
	kept := make(map[int]struct{}, len(votes))
	upserts := make([]*models.Vote, 0, len(votes))

	for _, incoming := range votes {
		choice, err := store.ChoiceByAPIID(ballot.ID, incoming.APIChoiceID)
		if err != nil {
			return false, fmt.Errorf("failed to resolve choice %d: %w", incoming.APIChoiceID, err)
		}
		if choice == nil {
			logger.Warnw("vote for unknown choice skipped",
				"ballotID", ballot.ID,
				"apiChoiceID", incoming.APIChoiceID,
			)
			continue
		}

		kept[choice.ID] = struct{}{}

		if prior, ok := existingByChoice[choice.ID]; ok {
			if prior.Value == incoming.Value {
				continue
			}
			updated := *prior
			updated.Value = incoming.Value
			updated.ModifiedAt = now
			upserts = append(upserts, &updated)
			continue
		}

		upserts = append(upserts, &models.Vote{
			BallotID:       ballot.ID,
			ChoiceID:       choice.ID,
			VotingIdentity: votingIdentity,
			Value:          incoming.Value,
			CreatedAt:      now,
			ModifiedAt:     now,
		})
	}

	deleteIDs := make([]int, 0)
	for _, prior := range existing {
		if _, ok := kept[prior.ChoiceID]; !ok {
			deleteIDs = append(deleteIDs, prior.ID)
		}
	}

	if len(deleteIDs) == 0 && len(upserts) == 0 {
		return firstVote, nil
	}

	if err := store.ReplaceVotes(ballot.ID, votingIdentity, deleteIDs, upserts); err != nil {
		return false, fmt.Errorf("failed to replace votes of %s: %w", votingIdentity, err)
	}
	return firstVote, nil
}
