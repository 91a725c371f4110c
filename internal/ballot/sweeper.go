package ballot

import (
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes abandoned drafts. A temporary ballot only exists on the
// device that drafted it, so one untouched for longer than the TTL is dead
// weight that would otherwise accumulate forever.
type Sweeper struct {
	store    *Store
	notifier *Notifier
	ttl      time.Duration
	logger   *zap.SugaredLogger
}

func NewSweeper(store *Store, notifier *Notifier, ttl time.Duration, logger *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		store:    store,
		notifier: notifier,
		ttl:      ttl,
		logger:   logger,
	}
}

// Sweep removes every draft untouched for longer than the TTL and reports
// how many were removed.
func (s *Sweeper) Sweep() (int, error) {
	drafts, err := s.store.StaleDrafts(time.Now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, draft := range drafts {
		if err := s.store.DeleteBallot(draft.ID); err != nil {
			s.logger.Errorw("failed to delete stale draft", "ballotID", draft.ID, "error", err)
			continue
		}
		s.notifier.Notify(Event{
			Kind:        EventBallotRemoved,
			BallotID:    draft.ID,
			APIBallotID: draft.APIBallotID,
		})
		removed++
	}

	if removed > 0 {
		s.logger.Infow("stale drafts removed", "count", removed)
	}
	return removed, nil
}
