package roster

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing activity dates from exports.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02.01.2006",
	"02-01-2006",
}

// Normalize maps a raw snapshot table with the default synonym table.
func Normalize(table *Table, branch Branch) []DriverRecord {
	return DefaultColumnMap().Normalize(table, branch)
}

// Normalize maps every row of table onto a DriverRecord tagged with branch.
// A nil or empty table yields an empty, non-nil slice.
func (m ColumnMap) Normalize(table *Table, branch Branch) []DriverRecord {
	if table.Len() == 0 {
		return []DriverRecord{}
	}

	res := m.Resolve(table.Header)
	records := make([]DriverRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, normalizeRow(row, res, branch))
	}
	return records
}

func normalizeRow(row []string, res Resolution, branch Branch) DriverRecord {
	record := DriverRecord{
		FullName:         DefaultName,
		LicenseID:        DefaultLicense,
		ResponsibleAgent: DefaultAgent,
		Branch:           branch,
	}

	if cell, ok := cellAt(row, res.Index(FieldName)); ok {
		record.FullName = strings.TrimSpace(cell)
	}
	if cell, ok := cellAt(row, res.Index(FieldLicense)); ok {
		record.LicenseID = NormalizeLicense(cell)
	}
	if cell, ok := cellAt(row, res.Index(FieldAgent)); ok {
		if agent := strings.TrimSpace(cell); agent != "" {
			record.ResponsibleAgent = agent
		}
	}
	if cell, ok := cellAt(row, res.Index(FieldTrips)); ok {
		record.CompletedTrips = ParseTrips(cell)
	}
	if cell, ok := cellAt(row, res.Index(FieldPhone)); ok {
		record.Phone = NormalizePhone(cell)
	}
	if cell, ok := cellAt(row, res.Index(FieldLastActivity)); ok {
		record.LastActivityAt = ParseDate(cell)
	}
	return record
}

// cellAt reports whether the column was resolved. A resolved column on a
// short row yields an empty cell.
func cellAt(row []string, index int) (string, bool) {
	if index < 0 {
		return "", false
	}
	if index >= len(row) {
		return "", true
	}
	return row[index], true
}

// NormalizeLicense returns the canonical comparison form of a license id:
// surrounding whitespace removed, case and digits untouched.
func NormalizeLicense(value string) string {
	return strings.TrimSpace(value)
}

// NormalizePhone strips the international '+' prefix and whitespace.
func NormalizePhone(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "+", ""))
}

// ParseTrips coerces a trip count cell. Decimal values are truncated;
// anything unparsable or non-finite yields 0.
func ParseTrips(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// ParseDate parses an activity date using the first matching layout. It
// returns nil for blank or unparsable input.
func ParseDate(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}
