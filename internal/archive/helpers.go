package archive

import (
	"database/sql"
	"errors"
	"time"
)

func scanCycle(scanner interface{ Scan(dest ...any) error }) (Cycle, error) {
	var (
		cycle       Cycle
		importedRaw string
		replacedA   int64
		replacedB   int64
		shaA        sql.NullString
		shaB        sql.NullString
		unreadable  int64
	)
	if err := scanner.Scan(
		&cycle.ID,
		&importedRaw,
		&cycle.ImportedBy,
		&replacedA,
		&replacedB,
		&cycle.RowsA,
		&cycle.RowsB,
		&shaA,
		&shaB,
		&cycle.ClearedEntries,
		&unreadable,
	); err != nil {
		return Cycle{}, err
	}
	if imported, err := parseTimeString(importedRaw); err == nil {
		cycle.ImportedAt = imported
	}
	cycle.ReplacedA = replacedA != 0
	cycle.ReplacedB = replacedB != 0
	cycle.SHA256A = shaA.String
	cycle.SHA256B = shaB.String
	cycle.ClearedUnreadable = unreadable != 0
	return cycle, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseNullableTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	ts, err := parseTimeString(value.String)
	if err != nil {
		return nil
	}
	return &ts
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", value)
	return t.UTC(), err
}
