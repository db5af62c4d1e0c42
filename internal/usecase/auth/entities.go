package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/user"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type Config struct {
	AccessSecret     string
	AccessTTL        time.Duration
	RefreshSecret    string
	RefreshTTL       time.Duration
	AllowAdminSignup bool
}

// Claims is the JWT payload; sub carries the public user id.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	Type  string      `json:"typ"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email    string
	Password string
	Role     domain.Role
}

type LoginInput struct {
	Email    string
	Password string
}

type UserDTO struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type Session struct {
	User UserDTO `json:"user"`
	Tokens
}

func toDTO(u *domain.User) UserDTO {
	return UserDTO{ID: u.UserID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}
