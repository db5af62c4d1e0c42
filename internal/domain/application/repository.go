package application

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts the application together with its initial history.
	// Unique indexes on application_number and pan_card surface as gorm.ErrDuplicatedKey.
	Create(ctx context.Context, a *Application) error

	// Save updates the application columns only; history is never rewritten.
	Save(ctx context.Context, a *Application) error

	// AppendHistory inserts one status history row.
	AppendHistory(ctx context.Context, e *StatusEntry) error

	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	GetByNumber(ctx context.Context, number string) (*Application, error)

	// GetDecidedByPANSince returns the latest approved/rejected application for pan
	// submitted at or after since.
	GetDecidedByPANSince(ctx context.Context, pan string, since time.Time) (*Application, error)

	ListByUserID(ctx context.Context, userID string) ([]Application, error)
	List(ctx context.Context, f ListFilter) ([]Application, error)

	// MaxNumberWithPrefix returns the greatest application number starting with prefix,
	// or "" when there is none.
	MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error)
}

type ListFilter struct {
	Status Status
	Limit  int
}

// Sequencer hands out per-day sequence numbers. Every call for the same day returns a
// distinct, strictly increasing value, including under concurrent callers.
type Sequencer interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}
