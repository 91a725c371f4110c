package ballot

import (
	"sort"
	"sync"
	"time"

	"ballot_system/internal/db/models"

	"go.uber.org/zap"
)

// memDB backs the in-memory repository fakes used by the flow tests. It
// mimics the real repositories closely enough to exercise the store and the
// merge logic: copies in, copies out, stable ids.
type memDB struct {
	mu      sync.Mutex
	nextID  int
	ballots map[int]models.Ballot
	choices map[int]models.Choice
	votes   map[int]models.Vote
	links   map[int]models.Link
}

func newMemDB() *memDB {
	return &memDB{
		nextID:  1,
		ballots: make(map[int]models.Ballot),
		choices: make(map[int]models.Choice),
		votes:   make(map[int]models.Vote),
		links:   make(map[int]models.Link),
	}
}

func (d *memDB) id() int {
	id := d.nextID
	d.nextID++
	return id
}

type memBallotRepo struct{ db *memDB }

func (r *memBallotRepo) Create(request *models.Ballot) (*models.Ballot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	request.ID = r.db.id()
	r.db.ballots[request.ID] = *request
	snapshot := *request
	return &snapshot, nil
}

func (r *memBallotRepo) Update(request *models.Ballot) (*models.Ballot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.ballots[request.ID] = *request
	snapshot := *request
	return &snapshot, nil
}

func (r *memBallotRepo) Delete(request *models.Ballot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.ballots, request.ID)
	return nil
}

func (r *memBallotRepo) GetOne(ballotID int) (*models.Ballot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ballot, ok := r.db.ballots[ballotID]
	if !ok {
		return nil, nil
	}
	return &ballot, nil
}

func (r *memBallotRepo) GetOneByAPIBallotID(apiBallotID, creatorIdentity string) (*models.Ballot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, ballot := range r.db.ballots {
		if ballot.APIBallotID == apiBallotID && ballot.CreatorIdentity == creatorIdentity {
			snapshot := ballot
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *memBallotRepo) linked(ballotID int, match func(models.Link) bool) bool {
	for _, link := range r.db.links {
		if link.BallotID == ballotID && match(link) {
			return true
		}
	}
	return false
}

func (r *memBallotRepo) getMany(match func(models.Link) bool, states []models.BallotState) ([]*models.Ballot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ballots := make([]*models.Ballot, 0)
	for id, ballot := range r.db.ballots {
		if !r.linked(id, match) {
			continue
		}
		if len(states) > 0 {
			found := false
			for _, s := range states {
				if ballot.State == s {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		snapshot := ballot
		ballots = append(ballots, &snapshot)
	}
	sort.Slice(ballots, func(i, j int) bool { return ballots[i].ID < ballots[j].ID })
	return ballots, nil
}

func (r *memBallotRepo) GetManyByContact(contactIdentity string, states ...models.BallotState) ([]*models.Ballot, error) {
	return r.getMany(func(l models.Link) bool { return l.ContactIdentity == contactIdentity }, states)
}

func (r *memBallotRepo) GetManyByGroup(groupID int, states ...models.BallotState) ([]*models.Ballot, error) {
	return r.getMany(func(l models.Link) bool { return l.ContactIdentity == "" && l.GroupID == groupID }, states)
}

func (r *memBallotRepo) GetManyByStateModifiedBefore(state models.BallotState, cutoff time.Time) ([]*models.Ballot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ballots := make([]*models.Ballot, 0)
	for _, ballot := range r.db.ballots {
		if ballot.State == state && ballot.ModifiedAt.Before(cutoff) {
			snapshot := ballot
			ballots = append(ballots, &snapshot)
		}
	}
	sort.Slice(ballots, func(i, j int) bool { return ballots[i].ID < ballots[j].ID })
	return ballots, nil
}

func (r *memBallotRepo) CountByContact(contactIdentity string) (int, error) {
	ballots, _ := r.GetManyByContact(contactIdentity)
	return len(ballots), nil
}

func (r *memBallotRepo) CountByGroup(groupID int) (int, error) {
	ballots, _ := r.GetManyByGroup(groupID)
	return len(ballots), nil
}

type memChoiceRepo struct{ db *memDB }

func (r *memChoiceRepo) Create(request *models.Choice) (*models.Choice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	request.ID = r.db.id()
	r.db.choices[request.ID] = *request
	snapshot := *request
	return &snapshot, nil
}

func (r *memChoiceRepo) Update(request *models.Choice) (*models.Choice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.choices[request.ID] = *request
	snapshot := *request
	return &snapshot, nil
}

func (r *memChoiceRepo) GetOne(choiceID int) (*models.Choice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	choice, ok := r.db.choices[choiceID]
	if !ok {
		return nil, nil
	}
	return &choice, nil
}

func (r *memChoiceRepo) GetOneByAPIChoiceID(ballotID, apiChoiceID int) (*models.Choice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, choice := range r.db.choices {
		if choice.BallotID == ballotID && choice.APIChoiceID == apiChoiceID {
			snapshot := choice
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *memChoiceRepo) GetManyByBallot(ballotID int) ([]*models.Choice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	choices := make([]*models.Choice, 0)
	for _, choice := range r.db.choices {
		if choice.BallotID == ballotID {
			snapshot := choice
			choices = append(choices, &snapshot)
		}
	}
	sort.Slice(choices, func(i, j int) bool { return choices[i].SortOrder < choices[j].SortOrder })
	return choices, nil
}

func (r *memChoiceRepo) DeleteManyByBallot(ballotID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, choice := range r.db.choices {
		if choice.BallotID == ballotID {
			delete(r.db.choices, id)
		}
	}
	return nil
}

type memVoteRepo struct{ db *memDB }

func (r *memVoteRepo) Create(request *models.Vote) (*models.Vote, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	request.ID = r.db.id()
	r.db.votes[request.ID] = *request
	snapshot := *request
	return &snapshot, nil
}

func (r *memVoteRepo) Update(request *models.Vote) (*models.Vote, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.votes[request.ID] = *request
	snapshot := *request
	return &snapshot, nil
}

func (r *memVoteRepo) GetManyByBallot(ballotID int) ([]*models.Vote, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	votes := make([]*models.Vote, 0)
	for _, vote := range r.db.votes {
		if vote.BallotID == ballotID {
			snapshot := vote
			votes = append(votes, &snapshot)
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].ID < votes[j].ID })
	return votes, nil
}

func (r *memVoteRepo) GetManyByVoter(ballotID int, votingIdentity string) ([]*models.Vote, error) {
	votes, _ := r.GetManyByBallot(ballotID)
	filtered := make([]*models.Vote, 0)
	for _, vote := range votes {
		if vote.VotingIdentity == votingIdentity {
			filtered = append(filtered, vote)
		}
	}
	return filtered, nil
}

func (r *memVoteRepo) ReplaceForVoter(ballotID int, votingIdentity string, deleteIDs []int, upserts []*models.Vote) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range deleteIDs {
		delete(r.db.votes, id)
	}
	for _, vote := range upserts {
		if vote.ID == 0 {
			vote.ID = r.db.id()
		}
		r.db.votes[vote.ID] = *vote
	}
	return nil
}

func (r *memVoteRepo) DeleteManyByBallot(ballotID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, vote := range r.db.votes {
		if vote.BallotID == ballotID {
			delete(r.db.votes, id)
		}
	}
	return nil
}

type memLinkRepo struct{ db *memDB }

func (r *memLinkRepo) Create(request *models.Link) (*models.Link, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	request.ID = r.db.id()
	r.db.links[request.ID] = *request
	snapshot := *request
	return &snapshot, nil
}

func (r *memLinkRepo) GetOneByBallot(ballotID int) (*models.Link, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, link := range r.db.links {
		if link.BallotID == ballotID {
			snapshot := link
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *memLinkRepo) DeleteByBallot(ballotID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, link := range r.db.links {
		if link.BallotID == ballotID {
			delete(r.db.links, id)
		}
	}
	return nil
}

// fakeReceiver records outgoing payloads and optionally injects send errors.
type fakeReceiver struct {
	setupErr error
	voteErr  error

	setups         []*SetupMessage
	setupReceivers [][]string
	votes          []*VoteMessage
}

func (f *fakeReceiver) CreateAndSendBallotSetupMessage(data *SetupMessage, ref ReceiverRef, messageID string, receivers []string, trigger TriggerSource) error {
	if f.setupErr != nil {
		return f.setupErr
	}
	f.setups = append(f.setups, data)
	f.setupReceivers = append(f.setupReceivers, receivers)
	return nil
}

func (f *fakeReceiver) CreateAndSendBallotVoteMessage(data *VoteMessage, ref ReceiverRef, trigger TriggerSource) error {
	if f.voteErr != nil {
		return f.voteErr
	}
	f.votes = append(f.votes, data)
	return nil
}

// eventRecorder collects every notified event in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (e *eventRecorder) HandleBallotEvent(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *eventRecorder) kinds() []EventKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	kinds := make([]EventKind, len(e.events))
	for i, event := range e.events {
		kinds[i] = event.Kind
	}
	return kinds
}

type fixture struct {
	db       *memDB
	store    *Store
	receiver *fakeReceiver
	notifier *Notifier
	events   *eventRecorder
}

func newFixture() *fixture {
	db := newMemDB()
	store := NewStore(
		&memBallotRepo{db: db},
		&memChoiceRepo{db: db},
		&memVoteRepo{db: db},
		&memLinkRepo{db: db},
		zap.NewNop().Sugar(),
	)

	events := &eventRecorder{}
	notifier := NewNotifier()
	notifier.Register(events)

	return &fixture{
		db:       db,
		store:    store,
		receiver: &fakeReceiver{},
		notifier: notifier,
		events:   events,
	}
}

func (f *fixture) lifecycle(localIdentity string) *Lifecycle {
	publisher := NewPublisher(f.store, f.receiver, zap.NewNop().Sugar())
	return NewLifecycle(f.store, publisher, f.notifier, localIdentity, zap.NewNop().Sugar())
}

func (f *fixture) reconciler(localIdentity string) *Reconciler {
	return NewReconciler(f.store, f.notifier, localIdentity, zap.NewNop().Sugar())
}

func (f *fixture) publisher() *Publisher {
	return NewPublisher(f.store, f.receiver, zap.NewNop().Sugar())
}
