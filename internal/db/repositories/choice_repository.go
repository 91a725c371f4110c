package repositories

import (
	"ballot_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

type choiceRepository struct {
	repository
}

type ChoiceRepository interface {
	Create(request *models.Choice) (*models.Choice, error)
	Update(request *models.Choice) (*models.Choice, error)
	GetOne(choiceID int) (*models.Choice, error)
	GetOneByAPIChoiceID(ballotID, apiChoiceID int) (*models.Choice, error)
	GetManyByBallot(ballotID int) ([]*models.Choice, error)
	DeleteManyByBallot(ballotID int) error
}

func NewChoiceRepository(db *pg.DB) ChoiceRepository {
	return &choiceRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *choiceRepository) Create(request *models.Choice) (*models.Choice, error) {
	_, err := r.db.Model(request).Insert()
	if err != nil {
		return nil, err
	}

	return r.GetOne(request.ID)
}

func (r *choiceRepository) Update(request *models.Choice) (*models.Choice, error) {
	_, err := r.db.Model(request).WherePK().Update()
	if err != nil {
		return nil, err
	}

	return r.GetOne(request.ID)
}

func (r *choiceRepository) GetOne(choiceID int) (*models.Choice, error) {
	choice := &models.Choice{}

	err := r.db.Model(choice).
		Where("id = ?", choiceID).
		Select()
	if noRows(err) {
		return nil, nil
	}

	return choice, err
}

func (r *choiceRepository) GetOneByAPIChoiceID(ballotID, apiChoiceID int) (*models.Choice, error) {
	choice := &models.Choice{}

	err := r.db.Model(choice).
		Where("ballot_id = ?", ballotID).
		Where("api_choice_id = ?", apiChoiceID).
		Select()
	if noRows(err) {
		return nil, nil
	}

	return choice, err
}

func (r *choiceRepository) GetManyByBallot(ballotID int) ([]*models.Choice, error) {
	choices := make([]*models.Choice, 0)

	err := r.db.Model(&choices).
		Where("ballot_id = ?", ballotID).
		OrderExpr("sort_order ASC").
		Select()

	return choices, err
}

func (r *choiceRepository) DeleteManyByBallot(ballotID int) error {
	_, err := r.db.Model((*models.Choice)(nil)).
		Where("ballot_id = ?", ballotID).
		Delete()
	return err
}
