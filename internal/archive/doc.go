// Package archive keeps a SQLite history of import cycles.
//
// Every snapshot import records one cycle row (who imported, which branch
// snapshots were replaced, row counts and digests) together with a copy of
// each provisional entry the import cleared. The cycle is staged in a
// transaction before the ledger files are swapped and committed afterwards,
// so a failed import never leaves a cycle behind.
//
// The database is a secondary record: the delimited ledger files remain the
// source of truth for lookups. Schema changes bump schemaVersion in schema.go;
// operators delete archive.db to adopt a new schema.
package archive
