package repositories

import (
	"ballot_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

type linkRepository struct {
	repository
}

type LinkRepository interface {
	Create(request *models.Link) (*models.Link, error)
	GetOneByBallot(ballotID int) (*models.Link, error)
	DeleteByBallot(ballotID int) error
}

func NewLinkRepository(db *pg.DB) LinkRepository {
	return &linkRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *linkRepository) Create(request *models.Link) (*models.Link, error) {
	_, err := r.db.Model(request).Insert()
	if err != nil {
		return nil, err
	}

	return request, nil
}

func (r *linkRepository) GetOneByBallot(ballotID int) (*models.Link, error) {
	link := &models.Link{}

	err := r.db.Model(link).
		Where("ballot_id = ?", ballotID).
		Select()
	if noRows(err) {
		return nil, nil
	}

	return link, err
}

func (r *linkRepository) DeleteByBallot(ballotID int) error {
	_, err := r.db.Model((*models.Link)(nil)).
		Where("ballot_id = ?", ballotID).
		Delete()
	return err
}
