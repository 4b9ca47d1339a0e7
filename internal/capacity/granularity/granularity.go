// Package granularity aligns instants to calendar bucket boundaries and
// generates bucket sequences for capacity reports. All alignment is UTC;
// weeks start on Sunday and quarters on Jan/Apr/Jul/Oct.
package granularity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Granularity string

const (
	Hourly    Granularity = "HOURLY"
	Daily     Granularity = "DAILY"
	Weekly    Granularity = "WEEKLY"
	Monthly   Granularity = "MONTHLY"
	Quarterly Granularity = "QUARTERLY"
	Yearly    Granularity = "YEARLY"
)

var (
	ErrUnknown         = errors.New("unknown_granularity")
	ErrMisalignedBegin = errors.New("misaligned_begin")
	ErrInvalidRange    = errors.New("invalid_range")
)

func Parse(value string) (Granularity, error) {
	switch Granularity(strings.ToUpper(strings.TrimSpace(value))) {
	case Hourly:
		return Hourly, nil
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Quarterly:
		return Quarterly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknown, value)
	}
}

// Align truncates t to the natural boundary of the granularity.
func (g Granularity) Align(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case Hourly:
		return t.Truncate(time.Hour)
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Weekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -int(day.Weekday()))
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Quarterly:
		quarterStart := time.Month(((int(t.Month())-1)/3)*3 + 1)
		return time.Date(t.Year(), quarterStart, 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// Next returns the following bucket boundary after the aligned instant t.
func (g Granularity) Next(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case Hourly:
		return t.Add(time.Hour)
	case Daily:
		return t.AddDate(0, 0, 1)
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Quarterly:
		return t.AddDate(0, 3, 0)
	case Yearly:
		return t.AddDate(1, 0, 0)
	default:
		return t
	}
}

// Aligned reports whether t already sits on a bucket boundary.
func (g Granularity) Aligned(t time.Time) bool {
	return g.Align(t).Equal(t.UTC())
}

// Buckets produces the ordered bucket timestamps covering [begin, end],
// inclusive of both boundary buckets. Callers must pass an aligned begin;
// misaligned input is a precondition violation and is rejected rather than
// silently re-aligned.
func Buckets(begin, end time.Time, g Granularity) ([]time.Time, error) {
	begin = begin.UTC()
	end = end.UTC()

	if end.Before(begin) {
		return nil, ErrInvalidRange
	}
	if !g.Aligned(begin) {
		return nil, fmt.Errorf("%w: %s is not aligned to %s", ErrMisalignedBegin, begin.Format(time.RFC3339), g)
	}

	var buckets []time.Time
	for ts := begin; !ts.After(end); ts = g.Next(ts) {
		buckets = append(buckets, ts)
	}
	return buckets, nil
}
