package application

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	NumberPrefix   = "CC"
	sequenceDigits = 5
	// MaxSequence is the largest per-day sequence representable in a number.
	MaxSequence = 99999
)

var ErrSequenceExhausted = errors.New("application number sequence exhausted for the day")

// DayKey is the YYYYMMDD component shared by all numbers issued on day.
func DayKey(day time.Time) string { return day.Format("20060102") }

// DayPrefix is the lexicographic prefix of every number issued on day.
func DayPrefix(day time.Time) string { return NumberPrefix + DayKey(day) }

// FormatNumber renders CC + YYYYMMDD + 5-digit zero-padded sequence.
func FormatNumber(day time.Time, seq int64) (string, error) {
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("%w: %d", ErrSequenceExhausted, seq)
	}
	return fmt.Sprintf("%s%0*d", DayPrefix(day), sequenceDigits, seq), nil
}

// ParseSequence returns the trailing sequence of an application number.
func ParseSequence(number string) (int64, error) {
	if len(number) != len(NumberPrefix)+8+sequenceDigits || !strings.HasPrefix(number, NumberPrefix) {
		return 0, fmt.Errorf("malformed application number %q", number)
	}
	return strconv.ParseInt(number[len(number)-sequenceDigits:], 10, 64)
}
