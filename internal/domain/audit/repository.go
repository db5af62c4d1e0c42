package audit

import "context"

type Repository interface {
	Create(ctx context.Context, l *Log) error

	// List returns entries newest first.
	List(ctx context.Context, f Filter) ([]Log, error)
}

type Filter struct {
	ApplicationID string
	UserID        string
	Action        Action
	Limit         int
}

// Publisher ships audit entries to an external stream.
type Publisher interface {
	Publish(ctx context.Context, l *Log) error
}
