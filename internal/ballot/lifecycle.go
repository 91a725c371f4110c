package ballot

import (
	"fmt"

	"ballot_system/internal/db/models"

	"go.uber.org/zap"
)

// Draft is the local user's input for a new ballot.
type Draft struct {
	Description string
	Choices     []string
	Assessment  models.BallotAssessment
	Type        models.BallotType
	DisplayType models.BallotDisplayType
	Receiver    ReceiverRef
}

// Lifecycle drives a ballot through temporary, open and closed. Closed is
// terminal. Publish and close are creator-only; their failure behavior is
// deliberately asymmetric: a publish that could not be sent rolls the ballot
// back to temporary, a close that could not be sent stays closed because
// local closure is authoritative once persisted and must not re-open itself
// over a transient send failure.
type Lifecycle struct {
	store         *Store
	publisher     *Publisher
	notifier      *Notifier
	localIdentity string
	logger        *zap.SugaredLogger
}

func NewLifecycle(store *Store, publisher *Publisher, notifier *Notifier, localIdentity string, logger *zap.SugaredLogger) *Lifecycle {
	return &Lifecycle{
		store:         store,
		publisher:     publisher,
		notifier:      notifier,
		localIdentity: localIdentity,
		logger:        logger,
	}
}

func (l *Lifecycle) emit(event Event) Event {
	l.notifier.Notify(event)
	return event
}

// Create drafts a new ballot in temporary state. The acting identity must be
// the configured local user.
func (l *Lifecycle) Create(creator string, draft Draft) (*models.Ballot, error) {
	if l.localIdentity == "" || creator != l.localIdentity {
		return nil, fmt.Errorf("%w: only the local user may create ballots", ErrNotAllowed)
	}

	ballot := &models.Ballot{
		APIBallotID:     NewAPIBallotID(),
		CreatorIdentity: creator,
		Description:     draft.Description,
		State:           models.BallotStateTemporary,
		Assessment:      draft.Assessment,
		Type:            draft.Type,
		ChoiceType:      models.BallotChoiceTypeText,
		DisplayType:     draft.DisplayType,
	}
	if ballot.Assessment == "" {
		ballot.Assessment = models.BallotAssessmentSingleChoice
	}
	if ballot.Type == "" {
		ballot.Type = models.BallotTypeIntermediate
	}
	if ballot.DisplayType == "" {
		ballot.DisplayType = models.BallotDisplayTypeListMode
	}

	ballot, err := l.store.CreateBallot(ballot)
	if err != nil {
		return nil, err
	}

	for i, name := range draft.Choices {
		_, err := l.store.CreateChoice(&models.Choice{
			BallotID:    ballot.ID,
			APIChoiceID: i,
			Name:        name,
			SortOrder:   i,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create choice %q: %w", name, err)
		}
	}

	if err := l.store.LinkBallot(ballot.ID, draft.Receiver); err != nil {
		return nil, err
	}

	l.emit(Event{Kind: EventBallotCreated, BallotID: ballot.ID, APIBallotID: ballot.APIBallotID})
	return ballot, nil
}

// Publish sends the setup message and moves the ballot from temporary to
// open. The open state is only persisted after the send succeeded, so a
// failed send (notably an oversized payload) leaves the ballot temporary.
func (l *Lifecycle) Publish(actor string, ballotID int) (Event, error) {
	ballot, err := l.store.Ballot(ballotID)
	if err != nil {
		return Event{}, err
	}
	if ballot == nil {
		l.logger.Warnw("cannot publish, ballot gone", "ballotID", ballotID)
		return Event{}, nil
	}

	if !ballot.IsCreator(actor) || actor != l.localIdentity {
		return Event{}, fmt.Errorf("%w: only the creator may publish ballot %d", ErrNotAllowed, ballotID)
	}
	if ballot.State != models.BallotStateTemporary {
		return Event{}, fmt.Errorf("%w: ballot %d is %s, not temporary", ErrNotAllowed, ballotID, ballot.State)
	}

	ref, err := l.receiverRef(ballotID)
	if err != nil {
		return Event{}, err
	}

	if err := l.publisher.PublishSetup(ballot, ref, nil, TriggerLocal); err != nil {
		return Event{}, err
	}

	ballot.State = models.BallotStateOpen
	if _, err := l.store.UpdateBallot(ballot); err != nil {
		return Event{}, err
	}

	return l.emit(Event{Kind: EventBallotModified, BallotID: ballot.ID, APIBallotID: ballot.APIBallotID}), nil
}

// Close finalizes the ballot and discloses results. The closed state is
// persisted before the close notification is sent; a send failure propagates
// but never rolls the closure back.
func (l *Lifecycle) Close(actor string, ballotID int, recipients ...string) (Event, error) {
	ballot, err := l.store.Ballot(ballotID)
	if err != nil {
		return Event{}, err
	}
	if ballot == nil {
		l.logger.Warnw("cannot close, ballot gone", "ballotID", ballotID)
		return Event{}, nil
	}

	if !ballot.IsCreator(actor) {
		return Event{}, fmt.Errorf("%w: only the creator may close ballot %d", ErrNotAllowed, ballotID)
	}
	if ballot.IsClosed() {
		l.logger.Debugw("ballot already closed", "ballotID", ballotID)
		return Event{}, nil
	}
	if ballot.State != models.BallotStateOpen {
		return Event{}, fmt.Errorf("%w: ballot %d is %s, not open", ErrNotAllowed, ballotID, ballot.State)
	}

	ref, err := l.receiverRef(ballotID)
	if err != nil {
		return Event{}, err
	}

	ballot.State = models.BallotStateClosed
	ballot, err = l.store.UpdateBallot(ballot)
	if err != nil {
		return Event{}, err
	}

	event := l.emit(Event{Kind: EventBallotClosed, BallotID: ballot.ID, APIBallotID: ballot.APIBallotID})

	if err := l.publisher.PublishSetup(ballot, ref, recipients, TriggerLocal); err != nil {
		return event, err
	}
	return event, nil
}

// Vote records the local user's complete selection while the ballot is open
// and sends it out. Voting on a closed ballot is acknowledged and ignored so
// a late tap does not cascade into a protocol error; voting before open is
// not permitted.
func (l *Lifecycle) Vote(actor string, ballotID int, selections map[int]int) (Event, error) {
	ballot, err := l.store.Ballot(ballotID)
	if err != nil {
		return Event{}, err
	}
	if ballot == nil {
		l.logger.Warnw("cannot vote, ballot gone", "ballotID", ballotID)
		return Event{}, nil
	}

	if l.localIdentity == "" || actor != l.localIdentity {
		return Event{}, fmt.Errorf("%w: votes are cast as the local user", ErrNotAllowed)
	}
	if ballot.IsClosed() {
		l.logger.Debugw("vote on closed ballot ignored", "ballotID", ballotID)
		return Event{}, nil
	}
	if !ballot.IsOpen() {
		return Event{}, fmt.Errorf("%w: ballot %d is not open", ErrNotAllowed, ballotID)
	}

	choices, err := l.store.Choices(ballotID)
	if err != nil {
		return Event{}, err
	}

	// The wire format carries the full array, one value per choice.
	votes := make([]VoteChoice, 0, len(choices))
	for _, choice := range choices {
		votes = append(votes, VoteChoice{
			APIChoiceID: choice.APIChoiceID,
			Value:       selections[choice.APIChoiceID],
		})
	}

	if _, err := applyVoteArray(l.store, l.logger, ballot, actor, votes); err != nil {
		return Event{}, err
	}

	ref, err := l.receiverRef(ballotID)
	if err != nil {
		return Event{}, err
	}
	if err := l.publisher.PublishVote(ballot, ref, actor, votes, TriggerLocal); err != nil {
		return Event{}, err
	}

	return l.emit(Event{
		Kind:           EventSelfVoted,
		BallotID:       ballot.ID,
		APIBallotID:    ballot.APIBallotID,
		VotingIdentity: actor,
	}), nil
}

func (l *Lifecycle) receiverRef(ballotID int) (ReceiverRef, error) {
	link, err := l.store.Link(ballotID)
	if err != nil {
		return ReceiverRef{}, err
	}
	if link == nil {
		return ReceiverRef{}, fmt.Errorf("%w: ballot %d has no link", ErrNotFound, ballotID)
	}
	return receiverFromLink(link), nil
}
