package user

import (
	"context"
	"errors"

	"watchlikemeBackend/utils"

	"gorm.io/gorm"
)

type (
	Repository interface {
		Create(ctx context.Context, user *User) error
		Update(ctx context.Context, user *User) error
		GetByUuid(ctx context.Context, uuid string) (*User, error)
		GetByEmail(ctx context.Context, email string) (*User, bool, error)
		GetByUsername(ctx context.Context, username string) (*User, bool, error)
		GetBySub(ctx context.Context, sub string) (*User, bool, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func CreateRepository(db *gorm.DB) Repository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) GetByUuid(ctx context.Context, userId string) (*User, error) {
	user := &User{}
	result := r.db.WithContext(ctx).Where("uuid = ?", userId).First(user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorUserNotFound
	}

	return user, result.Error
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, bool, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*User, bool, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *userRepository) GetBySub(ctx context.Context, sub string) (*User, bool, error) {
	return r.getBy(ctx, "google_sub = ?", sub)
}

func (r *userRepository) getBy(ctx context.Context, query string, arg string) (*User, bool, error) {
	user := &User{}
	result := r.db.WithContext(ctx).Where(query, arg).First(user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return user, false, nil
	}

	return user, result.Error == nil, result.Error
}
