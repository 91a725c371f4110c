package repositories

import (
	"time"

	"ballot_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

type ballotRepository struct {
	repository
}

type BallotRepository interface {
	Create(request *models.Ballot) (*models.Ballot, error)
	Update(request *models.Ballot) (*models.Ballot, error)
	Delete(request *models.Ballot) error
	GetOne(ballotID int) (*models.Ballot, error)
	GetOneByAPIBallotID(apiBallotID, creatorIdentity string) (*models.Ballot, error)
	GetManyByContact(contactIdentity string, states ...models.BallotState) ([]*models.Ballot, error)
	GetManyByGroup(groupID int, states ...models.BallotState) ([]*models.Ballot, error)
	GetManyByStateModifiedBefore(state models.BallotState, cutoff time.Time) ([]*models.Ballot, error)
	CountByContact(contactIdentity string) (int, error)
	CountByGroup(groupID int) (int, error)
}

func NewBallotRepository(db *pg.DB) BallotRepository {
	return &ballotRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *ballotRepository) Create(request *models.Ballot) (*models.Ballot, error) {
	_, err := r.db.Model(request).Insert()
	if err != nil {
		return nil, err
	}

	return r.GetOne(request.ID)
}

func (r *ballotRepository) Update(request *models.Ballot) (*models.Ballot, error) {
	_, err := r.db.Model(request).WherePK().Update()
	if err != nil {
		return nil, err
	}

	return r.GetOne(request.ID)
}

func (r *ballotRepository) Delete(request *models.Ballot) error {
	_, err := r.db.Model(request).WherePK().Delete()
	return err
}

func (r *ballotRepository) GetOne(ballotID int) (*models.Ballot, error) {
	ballot := &models.Ballot{}

	err := r.db.Model(ballot).
		Where("id = ?", ballotID).
		Select()
	if noRows(err) {
		return nil, nil
	}

	return ballot, err
}

func (r *ballotRepository) GetOneByAPIBallotID(apiBallotID, creatorIdentity string) (*models.Ballot, error) {
	ballot := &models.Ballot{}

	err := r.db.Model(ballot).
		Where("api_ballot_id = ?", apiBallotID).
		Where("creator_identity = ?", creatorIdentity).
		Select()
	if noRows(err) {
		return nil, nil
	}

	return ballot, err
}

func (r *ballotRepository) GetManyByContact(contactIdentity string, states ...models.BallotState) ([]*models.Ballot, error) {
	ballots := make([]*models.Ballot, 0)

	err := r.db.Model(&ballots).
		Join("JOIN links AS link ON link.ballot_id = ballot.id").
		Where("link.contact_identity = ?", contactIdentity).
		Apply(filterStates(states)).
		OrderExpr("ballot.created_at ASC").
		Select()

	return ballots, err
}

func (r *ballotRepository) GetManyByGroup(groupID int, states ...models.BallotState) ([]*models.Ballot, error) {
	ballots := make([]*models.Ballot, 0)

	err := r.db.Model(&ballots).
		Join("JOIN links AS link ON link.ballot_id = ballot.id").
		Where("link.group_id = ?", groupID).
		Apply(filterStates(states)).
		OrderExpr("ballot.created_at ASC").
		Select()

	return ballots, err
}

func (r *ballotRepository) GetManyByStateModifiedBefore(state models.BallotState, cutoff time.Time) ([]*models.Ballot, error) {
	ballots := make([]*models.Ballot, 0)

	err := r.db.Model(&ballots).
		Where("state = ?", state).
		Where("modified_at < ?", cutoff).
		Select()

	return ballots, err
}

func (r *ballotRepository) CountByContact(contactIdentity string) (int, error) {
	return r.db.Model((*models.Ballot)(nil)).
		Join("JOIN links AS link ON link.ballot_id = ballot.id").
		Where("link.contact_identity = ?", contactIdentity).
		Count()
}

func (r *ballotRepository) CountByGroup(groupID int) (int, error) {
	return r.db.Model((*models.Ballot)(nil)).
		Join("JOIN links AS link ON link.ballot_id = ballot.id").
		Where("link.group_id = ?", groupID).
		Count()
}

func filterStates(states []models.BallotState) func(q *pg.Query) (*pg.Query, error) {
	return func(q *pg.Query) (*pg.Query, error) {
		if len(states) == 0 {
			return q, nil
		}
		return q.WhereGroup(func(q *pg.Query) (*pg.Query, error) {
			for _, s := range states {
				q = q.WhereOr("ballot.state = ?", s)
			}
			return q, nil
		}), nil
	}
}
