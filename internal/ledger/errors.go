package ledger

import "errors"

var (
	// ErrAppend reports that a provisional or event row was not durably written.
	ErrAppend = errors.New("ledger append failed")
	// ErrImport reports that an import did not commit; the previous snapshots
	// and provisional ledger are still in place.
	ErrImport = errors.New("snapshot import failed")
	// ErrLocked reports that the data directory lock was not acquired in time.
	ErrLocked = errors.New("ledger lock unavailable")
	// ErrCorrupt reports a ledger file that does not match its expected layout.
	ErrCorrupt = errors.New("ledger file corrupt")
)

// ErrorKind classifies ledger errors for CLI messaging.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrAppend):
		return "append"
	case errors.Is(err, ErrImport):
		return "import"
	case errors.Is(err, ErrLocked):
		return "locked"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	default:
		return ""
	}
}
