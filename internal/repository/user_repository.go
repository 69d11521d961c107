package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/model"
)

// UserRepository reads account rows owned by the external identity
// system. The engine needs them only for certificate naming.
type UserRepository interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
