package archive

import "errors"

var (
	// ErrArchive reports that an import cycle could not be recorded.
	ErrArchive = errors.New("import archive failed")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrNotFound reports an unknown cycle id.
	ErrNotFound = errors.New("cycle not found")
)
