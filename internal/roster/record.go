package roster

import "time"

// Field defaults applied when a snapshot column is missing.
const (
	DefaultName    = "Unknown"
	DefaultLicense = "N/A"
	DefaultAgent   = "Unassigned"
)

// DriverRecord is the canonical driver row shared by snapshots and the
// provisional ledger.
type DriverRecord struct {
	FullName         string     `json:"full_name" yaml:"full_name"`
	LicenseID        string     `json:"license_id" yaml:"license_id"`
	ResponsibleAgent string     `json:"responsible_agent" yaml:"responsible_agent"`
	CompletedTrips   int        `json:"completed_trip_count" yaml:"completed_trip_count"`
	Phone            string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	Branch           Branch     `json:"branch" yaml:"branch"`
	LastActivityAt   *time.Time `json:"last_activity_at,omitempty" yaml:"last_activity_at,omitempty"`
	RegisteredAt     *time.Time `json:"registered_at,omitempty" yaml:"registered_at,omitempty"`
}

// ActivityAt returns RegisteredAt when set, else LastActivityAt.
func (r DriverRecord) ActivityAt() *time.Time {
	if r.RegisteredAt != nil {
		return r.RegisteredAt
	}
	return r.LastActivityAt
}

// Table is a raw delimited table: a header row plus data rows. Rows may be
// shorter or longer than the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
