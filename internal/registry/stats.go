package registry

import (
	"context"
	"fmt"

	"sentinel/internal/ledger"
	"sentinel/internal/roster"
)

// Stats summarises the store for metrics export.
type Stats struct {
	SnapshotRows          map[roster.Branch]int
	ProvisionalRows       map[roster.Branch]int
	ProvisionalUnreadable bool
	Events                map[ledger.EventKind]int
	DuplicatedIdentities  int
}

// Stats reads the store once and counts rows, events and duplicated ids.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	state, err := s.store.ReadState(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read store: %w", err)
	}
	events, err := s.store.ReadEvents(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read events: %w", err)
	}

	stats := Stats{
		SnapshotRows: map[roster.Branch]int{
			s.branches.A: state.SnapshotA.Len(),
			s.branches.B: state.SnapshotB.Len(),
		},
		ProvisionalRows: map[roster.Branch]int{
			s.branches.A: 0,
			s.branches.B: 0,
		},
		ProvisionalUnreadable: state.ProvisionalErr != nil,
		Events: map[ledger.EventKind]int{
			ledger.EventInscription: 0,
			ledger.EventTransfer:    0,
		},
	}
	for _, record := range state.Provisional {
		stats.ProvisionalRows[record.Branch]++
	}
	for _, event := range events {
		stats.Events[event.Kind]++
	}

	view := MergeState(state, s.columns, s.branches, s.logger)
	counts := make(map[string]int, len(view))
	for _, record := range view {
		if reportable(record.LicenseID) {
			counts[record.LicenseID]++
		}
	}
	for _, n := range counts {
		if n > 1 {
			stats.DuplicatedIdentities++
		}
	}
	return stats, nil
}
