package registry

import (
	"errors"

	"sentinel/internal/archive"
	"sentinel/internal/ledger"
)

var (
	// ErrIdentityTaken reports a registration refused because the license id
	// is already present in the merged view.
	ErrIdentityTaken = errors.New("license id already registered")
	// ErrIdentityNotFound reports a transfer request for an unknown license id.
	ErrIdentityNotFound = errors.New("license id not found")
	// ErrInvalidBranch reports a branch label outside the configured pair.
	ErrInvalidBranch = errors.New("invalid branch")
	// ErrInvalidRequest reports missing or malformed operation input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEventAppend reports an inscription whose provisional row was written
	// but whose audit event was not. The row is visible to lookups.
	ErrEventAppend = errors.New("inscription recorded without audit event")
	// ErrArchiveDisabled reports a history query while the archive is off.
	ErrArchiveDisabled = errors.New("import archive disabled")
)

// ErrorKind classifies an error returned by this package or the stores it
// drives. Unknown errors classify as "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEventAppend):
		return "event_append"
	case errors.Is(err, ErrIdentityTaken):
		return "identity_taken"
	case errors.Is(err, ErrIdentityNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidBranch), errors.Is(err, ErrInvalidRequest):
		return "validation"
	case errors.Is(err, ErrArchiveDisabled):
		return "configuration"
	case errors.Is(err, archive.ErrArchive):
		return "archive"
	}
	if kind := ledger.ErrorKind(err); kind != "" {
		return kind
	}
	return "internal"
}

// Recorded reports whether the failed operation still left a row in the
// ledger.
func Recorded(err error) bool {
	return errors.Is(err, ErrEventAppend) || (errors.Is(err, archive.ErrArchive) && !errors.Is(err, ledger.ErrImport))
}
