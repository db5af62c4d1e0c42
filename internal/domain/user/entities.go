package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
)

type Role string

const (
	RoleApplicant Role = "applicant"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool { return r == RoleApplicant || r == RoleAdmin }

// Table: users
type User struct {
	ID           uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"-"`
	UserID       string    `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_users_user_id" json:"id"`
	Email        string    `gorm:"size:254;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:72;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:'applicant'" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }
