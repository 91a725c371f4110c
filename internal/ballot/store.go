package ballot

import (
	"fmt"
	"sync"
	"time"

	"ballot_system/internal/db/models"
	"ballot_system/internal/db/repositories"

	"go.uber.org/zap"
)

type apiKey struct {
	apiBallotID     string
	creatorIdentity string
}

// Store is the persistence surface of the subsystem. On top of the
// repositories it keeps an id-keyed ballot cache with a secondary
// (apiBallotID, creatorIdentity) index, and a link cache. The caches hold
// value snapshots only: callers always get a private copy, and every mutation
// goes through an explicit create/update call that persists first and then
// atomically replaces the cached entry. Nothing ever hands out a mutable
// reference into a cache.
type Store struct {
	ballots repositories.BallotRepository
	choices repositories.ChoiceRepository
	votes   repositories.VoteRepository
	links   repositories.LinkRepository
	logger  *zap.SugaredLogger

	ballotMu   sync.Mutex
	ballotByID map[int]models.Ballot
	idByAPIKey map[apiKey]int

	linkMu       sync.Mutex
	linkByBallot map[int]models.Link
}

func NewStore(
	ballots repositories.BallotRepository,
	choices repositories.ChoiceRepository,
	votes repositories.VoteRepository,
	links repositories.LinkRepository,
	logger *zap.SugaredLogger,
) *Store {
	return &Store{
		ballots:      ballots,
		choices:      choices,
		votes:        votes,
		links:        links,
		logger:       logger,
		ballotByID:   make(map[int]models.Ballot),
		idByAPIKey:   make(map[apiKey]int),
		linkByBallot: make(map[int]models.Link),
	}
}

func (s *Store) cacheBallot(ballot *models.Ballot) {
	snapshot := *ballot
	snapshot.Choices = nil

	s.ballotMu.Lock()
	s.ballotByID[snapshot.ID] = snapshot
	s.idByAPIKey[apiKey{snapshot.APIBallotID, snapshot.CreatorIdentity}] = snapshot.ID
	s.ballotMu.Unlock()
}

func (s *Store) cachedBallot(ballotID int) (*models.Ballot, bool) {
	s.ballotMu.Lock()
	snapshot, ok := s.ballotByID[ballotID]
	s.ballotMu.Unlock()
	if !ok {
		return nil, false
	}
	return &snapshot, true
}

func (s *Store) evictBallot(ballot *models.Ballot) {
	s.ballotMu.Lock()
	delete(s.ballotByID, ballot.ID)
	delete(s.idByAPIKey, apiKey{ballot.APIBallotID, ballot.CreatorIdentity})
	s.ballotMu.Unlock()

	s.linkMu.Lock()
	delete(s.linkByBallot, ballot.ID)
	s.linkMu.Unlock()
}

// CreateBallot persists the ballot and populates the cache with its snapshot.
func (s *Store) CreateBallot(request *models.Ballot) (*models.Ballot, error) {
	now := time.Now()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.ModifiedAt = now

	ballot, err := s.ballots.Create(request)
	if err != nil {
		return nil, fmt.Errorf("failed to create ballot: %w", err)
	}

	s.cacheBallot(ballot)
	return ballot, nil
}

// UpdateBallot persists the new value and atomically replaces the cached
// snapshot.
func (s *Store) UpdateBallot(request *models.Ballot) (*models.Ballot, error) {
	request.ModifiedAt = time.Now()

	ballot, err := s.ballots.Update(request)
	if err != nil {
		return nil, fmt.Errorf("failed to update ballot: %w", err)
	}

	s.cacheBallot(ballot)
	return ballot, nil
}

// Ballot returns a private snapshot of the ballot, from cache when possible.
// A missing ballot yields (nil, nil).
func (s *Store) Ballot(ballotID int) (*models.Ballot, error) {
	if snapshot, ok := s.cachedBallot(ballotID); ok {
		return snapshot, nil
	}

	ballot, err := s.ballots.GetOne(ballotID)
	if err != nil || ballot == nil {
		return nil, err
	}

	s.cacheBallot(ballot)
	return ballot, nil
}

// BallotByAPIID resolves the wire-stable secondary key.
func (s *Store) BallotByAPIID(apiBallotID, creatorIdentity string) (*models.Ballot, error) {
	s.ballotMu.Lock()
	id, ok := s.idByAPIKey[apiKey{apiBallotID, creatorIdentity}]
	s.ballotMu.Unlock()
	if ok {
		return s.Ballot(id)
	}

	ballot, err := s.ballots.GetOneByAPIBallotID(apiBallotID, creatorIdentity)
	if err != nil || ballot == nil {
		return nil, err
	}

	s.cacheBallot(ballot)
	return ballot, nil
}

// DeleteBallot removes the ballot with its choices, votes and link as one
// unit and evicts the cache entries. Deleting an already-absent ballot is a
// warned no-op, tolerating races with concurrent removal.
func (s *Store) DeleteBallot(ballotID int) error {
	ballot, err := s.ballots.GetOne(ballotID)
	if err != nil {
		return fmt.Errorf("failed to load ballot %d: %w", ballotID, err)
	}
	if ballot == nil {
		s.logger.Warnw("ballot already gone", "ballotID", ballotID)
		return nil
	}

	if err := s.votes.DeleteManyByBallot(ballotID); err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	if err := s.choices.DeleteManyByBallot(ballotID); err != nil {
		return fmt.Errorf("failed to delete choices: %w", err)
	}
	if err := s.links.DeleteByBallot(ballotID); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if err := s.ballots.Delete(ballot); err != nil {
		return fmt.Errorf("failed to delete ballot: %w", err)
	}

	s.evictBallot(ballot)
	return nil
}

// MarkViewed records that the local user looked at the ballot.
func (s *Store) MarkViewed(ballotID int) error {
	ballot, err := s.Ballot(ballotID)
	if err != nil {
		return err
	}
	if ballot == nil {
		s.logger.Warnw("cannot mark viewed, ballot gone", "ballotID", ballotID)
		return nil
	}

	ballot.LastViewedAt = time.Now()
	_, err = s.UpdateBallot(ballot)
	return err
}

// LinkBallot binds the ballot to its owning conversation. Re-linking an
// already-linked ballot to the same receiver is a no-op; a link is immutable
// once set.
func (s *Store) LinkBallot(ballotID int, ref ReceiverRef) error {
	existing, err := s.Link(ballotID)
	if err != nil {
		return err
	}
	if existing != nil {
		if !ref.matchesLink(existing) {
			return fmt.Errorf("%w: ballot %d already linked to %s", ErrNotAllowed, ballotID, existing.Kind())
		}
		return nil
	}

	link, err := s.links.Create(ref.link(ballotID))
	if err != nil {
		return fmt.Errorf("failed to link ballot: %w", err)
	}

	s.linkMu.Lock()
	s.linkByBallot[ballotID] = *link
	s.linkMu.Unlock()
	return nil
}

// Link returns a private snapshot of the ballot's link, or (nil, nil) when
// the ballot is unlinked.
func (s *Store) Link(ballotID int) (*models.Link, error) {
	s.linkMu.Lock()
	snapshot, ok := s.linkByBallot[ballotID]
	s.linkMu.Unlock()
	if ok {
		return &snapshot, nil
	}

	link, err := s.links.GetOneByBallot(ballotID)
	if err != nil || link == nil {
		return nil, err
	}

	s.linkMu.Lock()
	s.linkByBallot[ballotID] = *link
	s.linkMu.Unlock()
	return link, nil
}

func (s *Store) CreateChoice(request *models.Choice) (*models.Choice, error) {
	return s.choices.Create(request)
}

func (s *Store) UpdateChoice(request *models.Choice) (*models.Choice, error) {
	return s.choices.Update(request)
}

func (s *Store) ChoiceByAPIID(ballotID, apiChoiceID int) (*models.Choice, error) {
	return s.choices.GetOneByAPIChoiceID(ballotID, apiChoiceID)
}

// Choices returns the ballot's choices in display order.
func (s *Store) Choices(ballotID int) ([]*models.Choice, error) {
	return s.choices.GetManyByBallot(ballotID)
}

func (s *Store) Votes(ballotID int) ([]*models.Vote, error) {
	return s.votes.GetManyByBallot(ballotID)
}

func (s *Store) VotesForVoter(ballotID int, votingIdentity string) ([]*models.Vote, error) {
	return s.votes.GetManyByVoter(ballotID, votingIdentity)
}

// ReplaceVotes applies one voter's deletes and upserts as a single logical
// operation.
func (s *Store) ReplaceVotes(ballotID int, votingIdentity string, deleteIDs []int, upserts []*models.Vote) error {
	return s.votes.ReplaceForVoter(ballotID, votingIdentity, deleteIDs, upserts)
}

func (s *Store) DeleteVotes(ballotID int) error {
	return s.votes.DeleteManyByBallot(ballotID)
}

func (s *Store) BallotsForReceiver(ref ReceiverRef, states ...models.BallotState) ([]*models.Ballot, error) {
	switch ref.Kind {
	case models.LinkKindContact:
		return s.ballots.GetManyByContact(ref.ContactIdentity, states...)
	case models.LinkKindGroup:
		return s.ballots.GetManyByGroup(ref.GroupID, states...)
	}
	return nil, fmt.Errorf("unknown receiver kind %q", ref.Kind)
}

func (s *Store) CountForReceiver(ref ReceiverRef) (int, error) {
	switch ref.Kind {
	case models.LinkKindContact:
		return s.ballots.CountByContact(ref.ContactIdentity)
	case models.LinkKindGroup:
		return s.ballots.CountByGroup(ref.GroupID)
	}
	return 0, fmt.Errorf("unknown receiver kind %q", ref.Kind)
}

// StaleDrafts lists temporary ballots untouched since the cutoff.
func (s *Store) StaleDrafts(cutoff time.Time) ([]*models.Ballot, error) {
	return s.ballots.GetManyByStateModifiedBefore(models.BallotStateTemporary, cutoff)
}
