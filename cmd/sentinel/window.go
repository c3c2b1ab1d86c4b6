package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sentinel/internal/registry"
)

type windowFlags struct {
	from string
	to   string
	days int
}

func addWindowFlags(cmd *cobra.Command, flags *windowFlags) {
	cmd.Flags().StringVar(&flags.from, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&flags.to, "to", "", "End date (YYYY-MM-DD, inclusive)")
	cmd.Flags().IntVar(&flags.days, "days", 0, "Limit to the last N days (overrides --from/--to)")
}

// window converts the flags into a range in local time. --to covers the
// whole named day.
func (f windowFlags) window(now time.Time) (registry.DateRange, error) {
	if f.days < 0 {
		return registry.DateRange{}, fmt.Errorf("%w: --days must be positive", registry.ErrInvalidRequest)
	}
	if f.days > 0 {
		return registry.LastDays(now, f.days), nil
	}
	var r registry.DateRange
	if from := strings.TrimSpace(f.from); from != "" {
		t, err := time.ParseInLocation(time.DateOnly, from, time.Local)
		if err != nil {
			return registry.DateRange{}, fmt.Errorf("%w: --from: %v", registry.ErrInvalidRequest, err)
		}
		r.From = t
	}
	if to := strings.TrimSpace(f.to); to != "" {
		t, err := time.ParseInLocation(time.DateOnly, to, time.Local)
		if err != nil {
			return registry.DateRange{}, fmt.Errorf("%w: --to: %v", registry.ErrInvalidRequest, err)
		}
		r.To = t.AddDate(0, 0, 1)
	}
	return r, r.Validate()
}
