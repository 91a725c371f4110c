package repositories

import (
	"ballot_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

type userRepository struct {
	repository
}

type UserRepository interface {
	Create(request *models.User) (*models.User, error)
	Update(request *models.User) (*models.User, error)
	GetOneByTelegramID(telegramID int64) (*models.User, error)
	GetOneByIdentity(identity string) (*models.User, error)
	GetMany() ([]*models.User, error)
}

func NewUserRepository(db *pg.DB) UserRepository {
	return &userRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *userRepository) Create(request *models.User) (*models.User, error) {
	_, err := r.db.Model(request).Insert()
	if err != nil {
		return nil, err
	}

	return request, nil
}

func (r *userRepository) Update(request *models.User) (*models.User, error) {
	_, err := r.db.Model(request).WherePK().Update()
	if err != nil {
		return nil, err
	}

	return request, nil
}

func (r *userRepository) GetOneByTelegramID(telegramID int64) (*models.User, error) {
	user := &models.User{}

	err := r.db.Model(user).
		Where("telegram_id = ?", telegramID).
		Select()
	if noRows(err) {
		return nil, nil
	}

	return user, err
}

func (r *userRepository) GetOneByIdentity(identity string) (*models.User, error) {
	user := &models.User{}

	err := r.db.Model(user).
		Where("identity = ?", identity).
		Select()
	if noRows(err) {
		return nil, nil
	}

	return user, err
}

func (r *userRepository) GetMany() ([]*models.User, error) {
	users := make([]*models.User, 0)

	err := r.db.Model(&users).
		OrderExpr("id ASC").
		Select()

	return users, err
}
