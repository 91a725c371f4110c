package ballot

import "sync"

type EventKind string

const (
	EventBallotCreated  EventKind = "ballot_created"
	EventBallotModified EventKind = "ballot_modified"
	EventBallotClosed   EventKind = "ballot_closed"
	EventBallotRemoved  EventKind = "ballot_removed"
	EventSelfVoted      EventKind = "self_voted"
	EventPeerVoted      EventKind = "peer_voted"
	EventVoteRemoved    EventKind = "vote_removed"
)

// Event is what an operation produced. The event a caller gets back is
// exactly the event listeners were notified with; there is no separate
// success flag to fall out of sync with.
type Event struct {
	Kind           EventKind
	BallotID       int
	APIBallotID    string
	VotingIdentity string
	// FirstVote is set on peer_voted when this was the voter's first vote on
	// the ballot, which consumers surface differently from a changed vote.
	FirstVote bool
}

type Listener interface {
	HandleBallotEvent(event Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(event Event)

func (f ListenerFunc) HandleBallotEvent(event Event) {
	f(event)
}

// Notifier fans events out to registered listeners. Delivery is synchronous
// and fire-and-forget; every listener observes every event.
type Notifier struct {
	mu        sync.Mutex
	listeners []Listener
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Register(listener Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, listener)
}

func (n *Notifier) Notify(event Event) {
	n.mu.Lock()
	listeners := make([]Listener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.Unlock()

	for _, listener := range listeners {
		listener.HandleBallotEvent(event)
	}
}
