package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appDomain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
)

const (
	sequenceKeyPrefix = "appseq:"
	sequenceTTL       = 48 * time.Hour
)

// SeedFunc returns the last sequence already issued for day (0 when none).
type SeedFunc func(ctx context.Context, day time.Time) (int64, error)

// RedisSequencer is an application.Sequencer backed by one INCR counter per day.
type RedisSequencer struct {
	rdb  *redis.Client
	seed SeedFunc
}

var _ appDomain.Sequencer = (*RedisSequencer)(nil)

func NewRedisSequencer(rdb *redis.Client, seed SeedFunc) *RedisSequencer {
	return &RedisSequencer{rdb: rdb, seed: seed}
}

// SeedFromRepository seeds a fresh counter from the greatest stored number for the day.
func SeedFromRepository(apps appDomain.Repository) SeedFunc {
	return func(ctx context.Context, day time.Time) (int64, error) {
		last, err := apps.MaxNumberWithPrefix(ctx, appDomain.DayPrefix(day))
		if err != nil || last == "" {
			return 0, err
		}
		return appDomain.ParseSequence(last)
	}
}

func SequenceKey(day time.Time) string { return sequenceKeyPrefix + appDomain.DayKey(day) }

func (s *RedisSequencer) Next(ctx context.Context, day time.Time) (int64, error) {
	key := SequenceKey(day)

	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("sequence exists: %w", err)
	}
	if n == 0 {
		var start int64
		if s.seed != nil {
			if start, err = s.seed(ctx, day); err != nil {
				return 0, fmt.Errorf("sequence seed: %w", err)
			}
		}
		// losers of a concurrent SETNX simply INCR the winner's value
		if err := s.rdb.SetNX(ctx, key, start, sequenceTTL).Err(); err != nil {
			return 0, fmt.Errorf("sequence setnx: %w", err)
		}
	}

	seq, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("sequence incr: %w", err)
	}
	if seq > appDomain.MaxSequence {
		return 0, appDomain.ErrSequenceExhausted
	}
	return seq, nil
}
