package mysql

import (
	"context"
	"time"

	appDomain "github.com/GopalDev98/creditcard-backend/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DaySequence is one counter row per calendar day (table: application_sequences).
type DaySequence struct {
	Day       string    `gorm:"column:day;primaryKey;size:8"`
	Seq       int64     `gorm:"column:seq;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (DaySequence) TableName() string { return "application_sequences" }

// DaySequenceRepository is the database-backed application.Sequencer.
type DaySequenceRepository struct{ db *gorm.DB }

var _ appDomain.Sequencer = (*DaySequenceRepository)(nil)

func NewDaySequenceRepository(db *gorm.DB) *DaySequenceRepository {
	return &DaySequenceRepository{db: db}
}

// Next increments the day's counter and reads it back in the same transaction; the
// row lock taken by the increment serializes concurrent callers.
// A missing row is seeded from the greatest number already issued for the day.
func (r *DaySequenceRepository) Next(ctx context.Context, day time.Time) (int64, error) {
	key := appDomain.DayKey(day)
	var seq int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DaySequence{}).
			Where("day = ?", key).
			Update("seq", gorm.Expr("seq + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			seed, err := seedFromApplications(ctx, tx, day)
			if err != nil {
				return err
			}
			// another caller may have created the row meanwhile
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "day"}},
				DoUpdates: clause.Assignments(map[string]any{"seq": gorm.Expr("application_sequences.seq + 1")}),
			}).Create(&DaySequence{Day: key, Seq: seed + 1}).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&DaySequence{}).Where("day = ?", key).Pluck("seq", &seq).Error
	})
	if err != nil {
		return 0, err
	}
	if seq > appDomain.MaxSequence {
		return 0, appDomain.ErrSequenceExhausted
	}
	return seq, nil
}

func seedFromApplications(ctx context.Context, tx *gorm.DB, day time.Time) (int64, error) {
	last, err := (&ApplicationRepository{db: tx}).MaxNumberWithPrefix(ctx, appDomain.DayPrefix(day))
	if err != nil || last == "" {
		return 0, err
	}
	return appDomain.ParseSequence(last)
}
