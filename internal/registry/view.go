package registry

import (
	"context"
	"fmt"
	"log/slog"

	"sentinel/internal/ledger"
	"sentinel/internal/logging"
	"sentinel/internal/roster"
)

// MergeState normalizes a store read into the logical view: snapshot A
// rows, then snapshot B rows, then provisional rows. Duplicates are kept.
// An unreadable provisional ledger is logged and skipped.
func MergeState(state ledger.State, columns roster.ColumnMap, branches roster.Branches, logger *slog.Logger) []roster.DriverRecord {
	a := columns.Normalize(state.SnapshotA, branches.A)
	b := columns.Normalize(state.SnapshotB, branches.B)

	view := make([]roster.DriverRecord, 0, len(a)+len(b)+len(state.Provisional))
	view = append(view, a...)
	view = append(view, b...)
	if state.ProvisionalErr != nil {
		logging.WarnWithContext(logger, "provisional ledger unreadable; using snapshots only", "ledger_parse_failed",
			logging.Error(state.ProvisionalErr),
			logging.String(logging.FieldErrorHint, "inspect "+ledger.ProvisionalFile+" in the data directory; the next import clears it"),
			logging.String(logging.FieldImpact, "registrations since the last import are not visible to lookups"),
		)
		return view
	}
	return append(view, state.Provisional...)
}

// BuildView reads the store fresh and returns the merged view.
func (s *Service) BuildView(ctx context.Context) ([]roster.DriverRecord, error) {
	state, err := s.store.ReadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	return MergeState(state, s.columns, s.branches, s.logger), nil
}
