package applicationmock

import (
	"context"
	"sync/atomic"
	"time"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
)

var _ domain.Sequencer = (*Sequencer)(nil)

// Sequencer counts from 1 unless NextFn is set.
type Sequencer struct {
	NextFn func(ctx context.Context, day time.Time) (int64, error)
	n      atomic.Int64
}

func (m *Sequencer) Next(ctx context.Context, day time.Time) (int64, error) {
	if m.NextFn != nil {
		return m.NextFn(ctx, day)
	}
	return m.n.Add(1), nil
}
