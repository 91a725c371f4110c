package repositories

import (
	"context"

	"ballot_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

type voteRepository struct {
	repository
}

type VoteRepository interface {
	Create(request *models.Vote) (*models.Vote, error)
	Update(request *models.Vote) (*models.Vote, error)
	GetManyByBallot(ballotID int) ([]*models.Vote, error)
	GetManyByVoter(ballotID int, votingIdentity string) ([]*models.Vote, error)
	ReplaceForVoter(ballotID int, votingIdentity string, deleteIDs []int, upserts []*models.Vote) error
	DeleteManyByBallot(ballotID int) error
}

func NewVoteRepository(db *pg.DB) VoteRepository {
	return &voteRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *voteRepository) Create(request *models.Vote) (*models.Vote, error) {
	_, err := r.db.Model(request).Insert()
	if err != nil {
		return nil, err
	}

	return request, nil
}

func (r *voteRepository) Update(request *models.Vote) (*models.Vote, error) {
	_, err := r.db.Model(request).WherePK().Update()
	if err != nil {
		return nil, err
	}

	return request, nil
}

func (r *voteRepository) GetManyByBallot(ballotID int) ([]*models.Vote, error) {
	votes := make([]*models.Vote, 0)

	err := r.db.Model(&votes).
		Where("ballot_id = ?", ballotID).
		OrderExpr("created_at ASC, id ASC").
		Select()

	return votes, err
}

func (r *voteRepository) GetManyByVoter(ballotID int, votingIdentity string) ([]*models.Vote, error) {
	votes := make([]*models.Vote, 0)

	err := r.db.Model(&votes).
		Where("ballot_id = ?", ballotID).
		Where("voting_identity = ?", votingIdentity).
		Select()

	return votes, err
}

// ReplaceForVoter applies one voter's full vote rewrite as a single
// transaction: stale rows go first, then inserts and updates. A vote message
// always carries the voter's complete state, so a partial apply would leave
// a mix of old and new rows behind.
func (r *voteRepository) ReplaceForVoter(ballotID int, votingIdentity string, deleteIDs []int, upserts []*models.Vote) error {
	return r.db.RunInTransaction(context.Background(), func(tx *pg.Tx) error {
		if len(deleteIDs) > 0 {
			_, err := tx.Model((*models.Vote)(nil)).
				Where("ballot_id = ?", ballotID).
				Where("voting_identity = ?", votingIdentity).
				Where("id IN (?)", pg.In(deleteIDs)).
				Delete()
			if err != nil {
				return err
			}
		}

		for _, vote := range upserts {
			if vote.ID == 0 {
				if _, err := tx.Model(vote).Insert(); err != nil {
					return err
				}
				continue
			}
			if _, err := tx.Model(vote).WherePK().Update(); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *voteRepository) DeleteManyByBallot(ballotID int) error {
	_, err := r.db.Model((*models.Vote)(nil)).
		Where("ballot_id = ?", ballotID).
		Delete()
	return err
}
