package applicationmock

import (
	"context"
	"time"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to success; reads default to domain.ErrNotFound.
type Repo struct {
	CreateFn               func(ctx context.Context, a *domain.Application) error
	SaveFn                 func(ctx context.Context, a *domain.Application) error
	AppendHistoryFn        func(ctx context.Context, e *domain.StatusEntry) error
	GetByApplicationIDFn   func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetByNumberFn          func(ctx context.Context, number string) (*domain.Application, error)
	GetDecidedByPANSinceFn func(ctx context.Context, pan string, since time.Time) (*domain.Application, error)
	ListByUserIDFn         func(ctx context.Context, userID string) ([]domain.Application, error)
	ListFn                 func(ctx context.Context, f domain.ListFilter) ([]domain.Application, error)
	MaxNumberWithPrefixFn  func(ctx context.Context, prefix string) (string, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) AppendHistory(ctx context.Context, e *domain.StatusEntry) error {
	if m.AppendHistoryFn != nil {
		return m.AppendHistoryFn(ctx, e)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByNumber(ctx context.Context, number string) (*domain.Application, error) {
	if m.GetByNumberFn != nil {
		return m.GetByNumberFn(ctx, number)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetDecidedByPANSince(ctx context.Context, pan string, since time.Time) (*domain.Application, error) {
	if m.GetDecidedByPANSinceFn != nil {
		return m.GetDecidedByPANSinceFn(ctx, pan, since)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Application, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Application, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	if m.MaxNumberWithPrefixFn != nil {
		return m.MaxNumberWithPrefixFn(ctx, prefix)
	}
	return "", nil
}
