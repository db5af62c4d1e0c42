// Package credit holds the pure credit policies used by the application workflow:
// score lookup, limit bands and the auto-decision rule.
package credit

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	MinScore = 300
	MaxScore = 900
)

var ErrInvalidTaxID = errors.New("tax identifier must not be empty")

type Band string

const (
	BandExcellent Band = "Excellent"
	BandGood      Band = "Good"
	BandFair      Band = "Fair"
	BandPoor      Band = "Poor"
	BandVeryPoor  Band = "Very Poor"
)

type Score struct {
	Value       int
	Band        Band
	RetrievedAt time.Time
}

// ScoreProvider looks up a bureau score for a normalized tax identifier.
type ScoreProvider interface {
	Score(ctx context.Context, taxID string) (Score, error)
}

// Bureau is a deterministic stand-in for a credit bureau: the same identifier always
// scores the same.
type Bureau struct {
	now func() time.Time
}

func NewBureau() *Bureau { return &Bureau{now: func() time.Time { return time.Now().UTC() }} }

func (b *Bureau) Score(_ context.Context, taxID string) (Score, error) {
	if strings.TrimSpace(taxID) == "" {
		return Score{}, ErrInvalidTaxID
	}
	v := ScoreFor(taxID)
	return Score{Value: v, Band: BandFor(v), RetrievedAt: b.now()}, nil
}

// ScoreFor maps the character-code sum of taxID into [MinScore, MaxScore].
func ScoreFor(taxID string) int {
	sum := 0
	for _, r := range taxID {
		sum += int(r)
	}
	return MinScore + sum%(MaxScore-MinScore+1)
}

func BandFor(score int) Band {
	switch {
	case score >= 750:
		return BandExcellent
	case score >= 700:
		return BandGood
	case score >= 650:
		return BandFair
	case score >= 600:
		return BandPoor
	default:
		return BandVeryPoor
	}
}
