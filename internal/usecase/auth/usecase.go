package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
	"github.com/GopalDev98/creditcard-backend/internal/domain/application"
	domain "github.com/GopalDev98/creditcard-backend/internal/domain/user"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/logging"
	"github.com/GopalDev98/creditcard-backend/pkg/id"
)

var (
	errBadCredentials = apperr.Unauthenticated("Invalid email or password")
	errBadToken       = apperr.Unauthenticated("Invalid or expired token")
)

type Usecase struct {
	users domain.Repository
	cfg   Config
	cost  int
	now   func() time.Time
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// WithBcryptCost lowers the hashing cost in tests.
func WithBcryptCost(cost int) Option { return func(u *Usecase) { u.cost = cost } }

func NewUsecase(users domain.Repository, cfg Config, opts ...Option) *Usecase {
	u := &Usecase{
		users: users,
		cfg:   cfg,
		cost:  bcrypt.DefaultCost,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = domain.RoleApplicant
	}
	if !role.Valid() {
		return nil, apperr.Validation("Invalid role", nil)
	}
	if role == domain.RoleAdmin && !u.cfg.AllowAdminSignup {
		return nil, apperr.Forbidden("Admin registration is disabled")
	}

	if _, err := u.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User with this email already exists", nil)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation("Password is too long", nil)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	usr := &domain.User{
		UserID:       id.NewID32(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("User with this email already exists", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{"user_id": usr.UserID, "role": usr.Role}).Info("user registered")
	return u.session(usr)
}

func (u *Usecase) Login(ctx context.Context, in LoginInput) (*Session, error) {
	usr, err := u.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Password)); err != nil {
		return nil, errBadCredentials
	}
	return u.session(usr)
}

// Refresh exchanges a valid refresh token for a new access token.
func (u *Usecase) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	c, err := u.parse(refreshToken, u.cfg.RefreshSecret, TokenRefresh)
	if err != nil {
		return nil, err
	}
	usr, err := u.users.GetByUserID(ctx, c.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errBadToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	access, err := u.sign(usr, TokenAccess, u.cfg.AccessSecret, u.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, ExpiresIn: int64(u.cfg.AccessTTL.Seconds())}, nil
}

func (u *Usecase) Me(ctx context.Context, userID string) (*UserDTO, error) {
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	dto := toDTO(usr)
	return &dto, nil
}

// Authenticate verifies an access token and returns the caller it names.
func (u *Usecase) Authenticate(token string) (*application.Actor, error) {
	c, err := u.parse(token, u.cfg.AccessSecret, TokenAccess)
	if err != nil {
		return nil, err
	}
	return &application.Actor{ID: c.Subject, Role: c.Role}, nil
}

func (u *Usecase) session(usr *domain.User) (*Session, error) {
	access, err := u.sign(usr, TokenAccess, u.cfg.AccessSecret, u.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := u.sign(usr, TokenRefresh, u.cfg.RefreshSecret, u.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &Session{
		User: toDTO(usr),
		Tokens: Tokens{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int64(u.cfg.AccessTTL.Seconds()),
		},
	}, nil
}

func (u *Usecase) sign(usr *domain.User, typ, secret string, ttl time.Duration) (string, error) {
	now := u.now()
	claims := Claims{
		Email: usr.Email,
		Role:  usr.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   usr.UserID,
			ID:        id.NewID32(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return s, nil
}

func (u *Usecase) parse(token, secret, typ string) (*Claims, error) {
	c := &Claims{}
	_, err := jwt.ParseWithClaims(token, c,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(u.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || c.Type != typ || c.Subject == "" {
		return nil, errBadToken
	}
	return c, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
