package ballot

import (
	"fmt"

	"ballot_system/internal/db/models"

	"go.uber.org/zap"
)

// Reconciler merges inbound wire messages into local state. Protocol
// violations abort the merge before anything is persisted and surface as
// ErrBadProtocolMessage for the caller to acknowledge-and-discard; they never
// crash the processing worker.
type Reconciler struct {
	store         *Store
	notifier      *Notifier
	localIdentity string
	logger        *zap.SugaredLogger
}

func NewReconciler(store *Store, notifier *Notifier, localIdentity string, logger *zap.SugaredLogger) *Reconciler {
	return &Reconciler{
		store:         store,
		notifier:      notifier,
		localIdentity: localIdentity,
		logger:        logger,
	}
}

func (r *Reconciler) emit(event Event) Event {
	r.notifier.Notify(event)
	return event
}

// ApplySetup reconciles an inbound setup message. A setup for an unknown
// ballot creates it in open state; a setup for a known ballot is only valid
// as a close, and a close for an already closed ballot is acknowledged
// without effect. The message's display type must match a known ballot's
// stored one, since the display mode is immutable for the ballot's lifetime.
func (r *Reconciler) ApplySetup(ref ReceiverRef, message *SetupMessage) (Event, error) {
	state, err := stateFromWire(message.State)
	if err != nil {
		return Event{}, err
	}
	assessment, err := assessmentFromWire(message.Assessment)
	if err != nil {
		return Event{}, err
	}
	ballotType, err := typeFromWire(message.Type)
	if err != nil {
		return Event{}, err
	}
	choiceType, err := choiceTypeFromWire(message.ChoiceType)
	if err != nil {
		return Event{}, err
	}
	displayType, err := displayTypeFromWire(message.DisplayType)
	if err != nil {
		return Event{}, err
	}

	existing, err := r.store.BallotByAPIID(message.APIBallotID, message.CreatorIdentity)
	if err != nil {
		return Event{}, fmt.Errorf("failed to look up ballot: %w", err)
	}

	var (
		ballot  *models.Ballot
		closing bool
	)

	if existing != nil {
		if displayType != existing.DisplayType {
			return Event{}, fmt.Errorf("%w: display type changed from %s to %s for ballot %s",
				ErrBadProtocolMessage, existing.DisplayType, displayType, message.APIBallotID)
		}
		if state != models.BallotStateClosed {
			return Event{}, fmt.Errorf("%w: repeated setup for known ballot %s",
				ErrBadProtocolMessage, message.APIBallotID)
		}
		if existing.IsClosed() {
			// Redelivered close. The vote history was already replaced once;
			// acknowledge without touching storage or re-emitting events.
			r.logger.Debugw("redelivered close acknowledged", "apiBallotID", message.APIBallotID)
			return Event{}, nil
		}

		closing = true
		existing.Description = message.Description
		existing.State = models.BallotStateClosed
		existing.Assessment = assessment
		existing.Type = ballotType
		existing.ChoiceType = choiceType
		existing.DisplayType = displayType

		ballot, err = r.store.UpdateBallot(existing)
		if err != nil {
			return Event{}, err
		}
	} else {
		if state == models.BallotStateClosed {
			return Event{}, fmt.Errorf("%w: new ballot %s declared closed, nothing to close",
				ErrBadProtocolMessage, message.APIBallotID)
		}

		ballot, err = r.store.CreateBallot(&models.Ballot{
			APIBallotID:     message.APIBallotID,
			CreatorIdentity: message.CreatorIdentity,
			Description:     message.Description,
			State:           models.BallotStateOpen,
			Assessment:      assessment,
			Type:            ballotType,
			ChoiceType:      choiceType,
			DisplayType:     displayType,
			CreatedAt:       message.CreatedAt,
		})
		if err != nil {
			return Event{}, err
		}
	}

	if err := r.store.LinkBallot(ballot.ID, ref); err != nil {
		return Event{}, err
	}

	// Closing a list-mode ballot replaces vote history: the close message is
	// the single source of truth for final tallies in that mode.
	if closing && ballot.DisplayType == models.BallotDisplayTypeListMode {
		prior, err := r.store.Votes(ballot.ID)
		if err != nil {
			return Event{}, err
		}
		if err := r.store.DeleteVotes(ballot.ID); err != nil {
			return Event{}, err
		}
		if len(prior) > 0 {
			r.emit(Event{Kind: EventVoteRemoved, BallotID: ballot.ID, APIBallotID: ballot.APIBallotID})
		}
	}

	if err := r.applyChoices(ballot, message); err != nil {
		return Event{}, err
	}

	kind := EventBallotCreated
	if closing {
		kind = EventBallotClosed
	}
	return r.emit(Event{Kind: kind, BallotID: ballot.ID, APIBallotID: ballot.APIBallotID}), nil
}

func (r *Reconciler) applyChoices(ballot *models.Ballot, message *SetupMessage) error {
	importResults := ballot.DisplayType == models.BallotDisplayTypeListMode && len(message.Participants) > 0
	votesByParticipant := make(map[string][]*models.Vote)

	for _, setupChoice := range message.Choices {
		choice, err := r.store.ChoiceByAPIID(ballot.ID, setupChoice.APIChoiceID)
		if err != nil {
			return fmt.Errorf("failed to look up choice %d: %w", setupChoice.APIChoiceID, err)
		}

		if choice == nil {
			choice = &models.Choice{
				BallotID:    ballot.ID,
				APIChoiceID: setupChoice.APIChoiceID,
				Name:        setupChoice.Name,
				SortOrder:   setupChoice.SortOrder,
			}
			if ballot.DisplayType == models.BallotDisplayTypeSummaryMode {
				choice.TotalVotes = setupChoice.TotalVotes
			}
			choice, err = r.store.CreateChoice(choice)
			if err != nil {
				return fmt.Errorf("failed to create choice %q: %w", setupChoice.Name, err)
			}
		} else {
			choice.Name = setupChoice.Name
			choice.SortOrder = setupChoice.SortOrder
			if ballot.DisplayType == models.BallotDisplayTypeSummaryMode {
				choice.TotalVotes = setupChoice.TotalVotes
			}
			choice, err = r.store.UpdateChoice(choice)
			if err != nil {
				return fmt.Errorf("failed to update choice %q: %w", setupChoice.Name, err)
			}
		}

		if !importResults {
			continue
		}

		// Bulk import of the sender's authoritative per-participant results,
		// one vote row per participant per choice.
		for i, identity := range message.Participants {
			value := 0
			if i < len(setupChoice.Results) {
				value = setupChoice.Results[i]
			}
			votesByParticipant[identity] = append(votesByParticipant[identity], &models.Vote{
				BallotID:       ballot.ID,
				ChoiceID:       choice.ID,
				VotingIdentity: identity,
				Value:          value,
				CreatedAt:      message.CreatedAt,
				ModifiedAt:     message.CreatedAt,
			})
		}
	}

	for _, identity := range message.Participants {
		rows := votesByParticipant[identity]
		if len(rows) == 0 {
			continue
		}
		if err := r.store.ReplaceVotes(ballot.ID, identity, nil, rows); err != nil {
			return fmt.Errorf("failed to import votes of %s: %w", identity, err)
		}
	}

	return nil
}

// ApplyVote reconciles an inbound vote message. Votes for closed or unknown
// ballots are acknowledged without effect. On a result-on-close ballot a
// non-creator node only merges votes sent by the local user (the user's own
// reflected action) or by the creator; everyone else's votes stay invisible
// until the close discloses them.
func (r *Reconciler) ApplyVote(message *VoteMessage) (Event, error) {
	sender := message.VotingIdentity

	ballot, err := r.store.BallotByAPIID(message.APIBallotID, message.CreatorIdentity)
	if err != nil {
		return Event{}, fmt.Errorf("failed to look up ballot: %w", err)
	}
	if ballot == nil {
		r.logger.Warnw("vote for unknown ballot discarded",
			"apiBallotID", message.APIBallotID,
			"voter", sender,
		)
		return Event{}, nil
	}

	if ballot.IsClosed() {
		r.logger.Debugw("vote for closed ballot ignored", "ballotID", ballot.ID, "voter", sender)
		return Event{}, nil
	}

	if ballot.Type == models.BallotTypeResultOnClose && !r.mayObserveVote(ballot, sender) {
		r.logger.Debugw("intermediate vote withheld until close",
			"ballotID", ballot.ID,
			"voter", sender,
		)
		return Event{}, nil
	}

	firstVote, err := applyVoteArray(r.store, r.logger, ballot, sender, message.Votes)
	if err != nil {
		return Event{}, err
	}

	if sender == r.localIdentity {
		return r.emit(Event{
			Kind:           EventSelfVoted,
			BallotID:       ballot.ID,
			APIBallotID:    ballot.APIBallotID,
			VotingIdentity: sender,
		}), nil
	}

	return r.emit(Event{
		Kind:           EventPeerVoted,
		BallotID:       ballot.ID,
		APIBallotID:    ballot.APIBallotID,
		VotingIdentity: sender,
		FirstVote:      firstVote,
	}), nil
}

// mayObserveVote is the result-on-close visibility rule. The creator's own
// node sees every vote; any node sees the local user's reflected votes and
// the creator's votes.
func (r *Reconciler) mayObserveVote(ballot *models.Ballot, sender string) bool {
	if ballot.IsCreator(r.localIdentity) {
		return true
	}
	return sender == r.localIdentity || ballot.IsCreator(sender)
}
