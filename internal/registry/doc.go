// Package registry is the identity-reconciliation engine.
//
// It merges the two branch snapshots and the provisional ledger into one
// view on every call, resolves which branch owns a license id, and records
// inscriptions and transfer requests through the ledger. Service exposes the
// operations the CLI consumes; Resolve and Arbitrate are pure and usable on
// their own.
//
// Ownership is decided by one rule everywhere: the matching row with the
// highest completed trip count wins, and ties go to the row that appears
// later in the view (snapshot A, then snapshot B, then provisional rows in
// append order).
package registry
