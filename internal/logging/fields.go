package logging

const (
	// FieldComponent identifies the subsystem emitting the log line.
	FieldComponent = "component"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldLicenseID is the normalized driver license identifier.
	FieldLicenseID = "license_id"
	// FieldBranch is the branch label a record belongs to.
	FieldBranch = "branch"
	// FieldAgent is the acting agent.
	FieldAgent = "agent"
	// FieldCycleID is the import cycle identifier.
	FieldCycleID = "cycle_id"
	// FieldEventID is the event log identifier.
	FieldEventID = "event_id"
)
