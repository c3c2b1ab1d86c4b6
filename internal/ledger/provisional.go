package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sentinel/internal/roster"
)

// ProvisionalColumns is the header of the provisional ledger.
var ProvisionalColumns = []string{
	"full_name",
	"license_id",
	"responsible_agent",
	"completed_trip_count",
	"phone",
	"branch",
	"last_activity_at",
	"registered_at",
}

const timestampLayout = time.RFC3339Nano

// AppendProvisional appends one in-flight registration. Repeated appends for
// the same license are kept; they surface as duplicates on the next read.
func (s *Store) AppendProvisional(ctx context.Context, record roster.DriverRecord) error {
	return s.appendRow(ctx, ProvisionalFile, ProvisionalColumns, encodeProvisional(record))
}

// ReadProvisional reads the provisional ledger on its own. A missing file is
// an empty ledger; a malformed one is reported with ErrCorrupt.
func (s *Store) ReadProvisional(ctx context.Context) ([]roster.DriverRecord, error) {
	var (
		records []roster.DriverRecord
		readErr error
	)
	err := s.withLock(ctx, false, func() error {
		records, readErr = s.readProvisional()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, readErr
}

func (s *Store) readProvisional() ([]roster.DriverRecord, error) {
	rows, err := readStrictTable(s.Path(ProvisionalFile), s.delimiter, ProvisionalColumns)
	if err != nil {
		return nil, err
	}
	records := make([]roster.DriverRecord, 0, len(rows))
	for i, row := range rows {
		record, err := decodeProvisional(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrCorrupt, ProvisionalFile, i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func encodeProvisional(r roster.DriverRecord) []string {
	return []string{
		r.FullName,
		r.LicenseID,
		r.ResponsibleAgent,
		strconv.Itoa(r.CompletedTrips),
		r.Phone,
		string(r.Branch),
		formatTimestamp(r.LastActivityAt),
		formatTimestamp(r.RegisteredAt),
	}
}

func decodeProvisional(row []string) (roster.DriverRecord, error) {
	trips, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return roster.DriverRecord{}, fmt.Errorf("completed_trip_count: %w", err)
	}
	branch := strings.TrimSpace(row[5])
	if branch == "" {
		return roster.DriverRecord{}, fmt.Errorf("branch is empty")
	}
	lastActivity, err := parseTimestamp(row[6])
	if err != nil {
		return roster.DriverRecord{}, fmt.Errorf("last_activity_at: %w", err)
	}
	registered, err := parseTimestamp(row[7])
	if err != nil {
		return roster.DriverRecord{}, fmt.Errorf("registered_at: %w", err)
	}
	return roster.DriverRecord{
		FullName:         row[0],
		LicenseID:        roster.NormalizeLicense(row[1]),
		ResponsibleAgent: row[2],
		CompletedTrips:   trips,
		Phone:            row[4],
		Branch:           roster.Branch(branch),
		LastActivityAt:   lastActivity,
		RegisteredAt:     registered,
	}, nil
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(timestampLayout)
}

func parseTimestamp(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	ts, err := time.Parse(timestampLayout, trimmed)
	if err != nil {
		return nil, err
	}
	ts = ts.UTC()
	return &ts, nil
}
