package main

import (
	"fmt"

	"sentinel/internal/registry"
)

// describeError appends what happened to the ledger, so the operator knows
// whether a row was written.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	var note string
	switch registry.ErrorKind(err) {
	case "event_append":
		note = "the provisional entry WAS recorded but its audit event was not; report it to an administrator"
	case "append":
		note = "nothing was recorded; retry once the data directory is writable"
	case "locked":
		note = "the data directory is busy; nothing was recorded"
	case "import":
		note = "snapshots and provisional entries are unchanged"
	case "archive":
		note = "the import was applied but is missing from history"
	case "identity_taken":
		note = "nothing was recorded"
	case "corrupt":
		note = "a ledger file does not match its expected layout"
	}
	if registry.Recorded(err) && note == "" {
		note = "a ledger row was written"
	}
	if note == "" {
		return fmt.Sprintf("error: %v", err)
	}
	return fmt.Sprintf("error: %v (%s)", err, note)
}
