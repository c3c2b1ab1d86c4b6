package registry

import (
	"fmt"
	"time"
)

// DateRange is a half-open interval [From, To). A zero bound is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range is unbounded on both sides.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// Validate rejects ranges whose end precedes their start.
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return fmt.Errorf("%w: range end %s precedes start %s", ErrInvalidRequest,
			r.To.Format(time.DateOnly), r.From.Format(time.DateOnly))
	}
	return nil
}

// LastDays returns the range starting n days before now, open-ended.
func LastDays(now time.Time, n int) DateRange {
	return DateRange{From: now.AddDate(0, 0, -n)}
}
