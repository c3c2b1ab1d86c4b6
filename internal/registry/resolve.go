package registry

import "sentinel/internal/roster"

// Status classifies a lookup.
type Status string

const (
	StatusFree      Status = "FREE"
	StatusDuplicate Status = "DUPLICATE"
)

// Outcome is the result of resolving one license id against a view.
type Outcome struct {
	LicenseID string                `json:"license_id" yaml:"license_id"`
	Status    Status                `json:"status" yaml:"status"`
	Matches   []roster.DriverRecord `json:"matches,omitempty" yaml:"matches,omitempty"`
	Owner     *roster.DriverRecord  `json:"owner,omitempty" yaml:"owner,omitempty"`
}

// Free reports whether no row matched.
func (o Outcome) Free() bool { return o.Status == StatusFree }

// Resolve filters view down to the rows carrying licenseID and arbitrates
// ownership. The key is trimmed the same way snapshot cells are.
func Resolve(view []roster.DriverRecord, licenseID string) Outcome {
	key := roster.NormalizeLicense(licenseID)
	var matches []roster.DriverRecord
	for _, record := range view {
		if record.LicenseID == key {
			matches = append(matches, record)
		}
	}
	if len(matches) == 0 {
		return Outcome{LicenseID: key, Status: StatusFree}
	}
	owner, _ := Arbitrate(matches)
	return Outcome{LicenseID: key, Status: StatusDuplicate, Matches: matches, Owner: &owner}
}

// Arbitrate picks the owning row: the highest completed trip count, with
// ties going to the later row. It reports false for an empty slice.
func Arbitrate(matches []roster.DriverRecord) (roster.DriverRecord, bool) {
	if len(matches) == 0 {
		return roster.DriverRecord{}, false
	}
	best := 0
	for i := 1; i < len(matches); i++ {
		if matches[i].CompletedTrips >= matches[best].CompletedTrips {
			best = i
		}
	}
	return matches[best], true
}
