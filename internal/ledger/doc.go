// Package ledger persists the identity store: one snapshot table per branch,
// the provisional registration ledger, and the event log.
//
// Every table is a delimited UTF-8 file with a header row inside a shared
// data directory. Snapshots are replaced wholesale by ApplyImport; the
// provisional ledger and the event log only grow through appends. An
// advisory lock file coordinates cooperating processes: reads hold it shared,
// appends and imports hold it exclusively, so a reader never observes new
// snapshots next to a provisional ledger that should already be gone.
//
// Nothing here caches file contents. Callers that need the current state read
// it again.
package ledger
