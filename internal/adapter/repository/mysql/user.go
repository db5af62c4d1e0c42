package mysql

import (
	"context"
	"strings"

	userDomain "github.com/GopalDev98/creditcard-backend/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, userDomain.ErrNotFound)
	}
	return &out, nil
}
