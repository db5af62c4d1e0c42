package credit

import "github.com/shopspring/decimal"

// Limit is either an automatic credit limit or Subjective (manual review).
type Limit struct {
	Amount     int64
	Subjective bool
}

var SubjectiveLimit = Limit{Subjective: true}

// Amount to persist: subjective limits are stored as the 0 sentinel.
func (l Limit) Stored() int64 {
	if l.Subjective {
		return 0
	}
	return l.Amount
}

type limitBand struct {
	upTo  decimal.Decimal // inclusive
	limit int64
}

var limitBands = []limitBand{
	{upTo: decimal.NewFromInt(200_000), limit: 50_000},
	{upTo: decimal.NewFromInt(300_000), limit: 75_000},
	{upTo: decimal.NewFromInt(500_000), limit: 100_000},
}

// LimitFor returns the automatic limit for a stated annual income.
// Incomes above the last band get SubjectiveLimit.
func LimitFor(annualIncome decimal.Decimal) Limit {
	for _, b := range limitBands {
		if annualIncome.LessThanOrEqual(b.upTo) {
			return Limit{Amount: b.limit}
		}
	}
	return SubjectiveLimit
}
