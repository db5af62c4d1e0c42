package applicationmock

import (
	"context"
	"time"

	"github.com/GopalDev98/creditcard-backend/internal/domain/credit"
)

var _ credit.ScoreProvider = (*ScoreProvider)(nil)

// ScoreProvider returns Value for every identifier unless ScoreFn is set.
type ScoreProvider struct {
	Value   int
	ScoreFn func(ctx context.Context, taxID string) (credit.Score, error)
}

func (m *ScoreProvider) Score(ctx context.Context, taxID string) (credit.Score, error) {
	if m.ScoreFn != nil {
		return m.ScoreFn(ctx, taxID)
	}
	return credit.Score{Value: m.Value, Band: credit.BandFor(m.Value), RetrievedAt: time.Now().UTC()}, nil
}
