package user

import "context"

type Repository interface {
	// Create fails with gorm.ErrDuplicatedKey when the email is taken.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUserID(ctx context.Context, userID string) (*User, error)
}
