package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sentinel/internal/roster"
)

// EventKind distinguishes event log rows.
type EventKind string

const (
	EventInscription EventKind = "INSCRIPTION"
	EventTransfer    EventKind = "TRANSFER"
)

// EventRecord is one immutable audit row.
//
// ResponsibleAgent is the agent the event counts for: the inscribing agent
// for inscriptions, and the agent responsible for the driver in the source
// branch for transfers.
type EventRecord struct {
	ID               string        `json:"event_id" yaml:"event_id"`
	Timestamp        time.Time     `json:"timestamp" yaml:"timestamp"`
	Kind             EventKind     `json:"event_kind" yaml:"event_kind"`
	ActingAgent      string        `json:"acting_agent" yaml:"acting_agent"`
	LicenseID        string        `json:"license_id" yaml:"license_id"`
	DriverName       string        `json:"driver_name" yaml:"driver_name"`
	SourceBranch     roster.Branch `json:"source_branch,omitempty" yaml:"source_branch,omitempty"`
	TargetBranch     roster.Branch `json:"target_branch" yaml:"target_branch"`
	ResponsibleAgent string        `json:"responsible_agent" yaml:"responsible_agent"`
	Reason           string        `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// EventColumns is the header of the event log.
var EventColumns = []string{
	"event_id",
	"timestamp",
	"event_kind",
	"acting_agent",
	"license_id",
	"driver_name",
	"source_branch",
	"target_branch",
	"responsible_agent",
	"reason",
}

// AppendEvent appends one audit row. A failure is returned wrapped in
// ErrAppend and must reach the operator.
func (s *Store) AppendEvent(ctx context.Context, event EventRecord) error {
	if event.ID == "" {
		return fmt.Errorf("%w: event id is empty", ErrAppend)
	}
	switch event.Kind {
	case EventInscription, EventTransfer:
	default:
		return fmt.Errorf("%w: unknown event kind %q", ErrAppend, event.Kind)
	}
	return s.appendRow(ctx, EventsFile, EventColumns, encodeEvent(event))
}

// ReadEvents returns the event log in append order.
func (s *Store) ReadEvents(ctx context.Context) ([]EventRecord, error) {
	var events []EventRecord
	err := s.withLock(ctx, false, func() error {
		rows, err := readStrictTable(s.Path(EventsFile), s.delimiter, EventColumns)
		if err != nil {
			return err
		}
		events = make([]EventRecord, 0, len(rows))
		for i, row := range rows {
			event, err := decodeEvent(row)
			if err != nil {
				return fmt.Errorf("%w: %s row %d: %v", ErrCorrupt, EventsFile, i+2, err)
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func encodeEvent(e EventRecord) []string {
	return []string{
		e.ID,
		e.Timestamp.UTC().Format(timestampLayout),
		string(e.Kind),
		e.ActingAgent,
		e.LicenseID,
		e.DriverName,
		string(e.SourceBranch),
		string(e.TargetBranch),
		e.ResponsibleAgent,
		e.Reason,
	}
}

func decodeEvent(row []string) (EventRecord, error) {
	ts, err := time.Parse(timestampLayout, strings.TrimSpace(row[1]))
	if err != nil {
		return EventRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	kind := EventKind(strings.TrimSpace(row[2]))
	switch kind {
	case EventInscription, EventTransfer:
	default:
		return EventRecord{}, fmt.Errorf("unknown event kind %q", kind)
	}
	return EventRecord{
		ID:               row[0],
		Timestamp:        ts.UTC(),
		Kind:             kind,
		ActingAgent:      row[3],
		LicenseID:        row[4],
		DriverName:       row[5],
		SourceBranch:     roster.Branch(row[6]),
		TargetBranch:     roster.Branch(row[7]),
		ResponsibleAgent: row[8],
		Reason:           row[9],
	}, nil
}
