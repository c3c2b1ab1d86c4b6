package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sentinel/internal/ledger"
	"sentinel/internal/logging"
	"sentinel/internal/roster"
)

// Registration describes a new provisional inscription.
type Registration struct {
	Agent          string
	LicenseID      string
	Branch         roster.Branch
	FullName       string
	Phone          string
	CompletedTrips int
}

// Transfer describes a transfer request between the two branches.
type Transfer struct {
	Agent       string
	LicenseID   string
	DriverName  string
	Source      roster.Branch
	Target      roster.Branch
	Responsible string
	Reason      string
}

// Recorder appends inscriptions and transfers to the ledger. It holds no
// lock across calls; repeated inscriptions of one license id are all kept.
type Recorder struct {
	store  *ledger.Store
	clock  *Clock
	newID  func() string
	logger *slog.Logger
}

// NewRecorder builds a recorder. A nil clock uses the wall clock and a nil
// newID generates random UUIDs.
func NewRecorder(store *ledger.Store, clock *Clock, newID func() string, logger *slog.Logger) *Recorder {
	if clock == nil {
		clock = NewClock(nil)
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Recorder{
		store:  store,
		clock:  clock,
		newID:  newID,
		logger: logging.NewComponentLogger(logger, "recorder"),
	}
}

// RecordInscription appends the provisional row, then the INSCRIPTION
// event. When only the row lands, the error wraps ErrEventAppend.
func (r *Recorder) RecordInscription(ctx context.Context, reg Registration) (ledger.EventRecord, error) {
	now := r.clock.Now()
	name := strings.TrimSpace(reg.FullName)
	if name == "" {
		name = roster.DefaultName
	}
	record := roster.DriverRecord{
		FullName:         name,
		LicenseID:        roster.NormalizeLicense(reg.LicenseID),
		ResponsibleAgent: strings.TrimSpace(reg.Agent),
		CompletedTrips:   reg.CompletedTrips,
		Phone:            roster.NormalizePhone(reg.Phone),
		Branch:           reg.Branch,
		LastActivityAt:   &now,
		RegisteredAt:     &now,
	}
	if err := r.store.AppendProvisional(ctx, record); err != nil {
		return ledger.EventRecord{}, fmt.Errorf("append provisional entry: %w", err)
	}

	event := ledger.EventRecord{
		ID:               r.newID(),
		Timestamp:        now,
		Kind:             ledger.EventInscription,
		ActingAgent:      record.ResponsibleAgent,
		LicenseID:        record.LicenseID,
		DriverName:       record.FullName,
		TargetBranch:     record.Branch,
		ResponsibleAgent: record.ResponsibleAgent,
	}
	if err := r.store.AppendEvent(ctx, event); err != nil {
		logging.ErrorWithContext(r.logger, "inscription event not recorded", "event_append_failed",
			logging.String(logging.FieldLicenseID, event.LicenseID),
			logging.String(logging.FieldAgent, event.ActingAgent),
			logging.String(logging.FieldBranch, event.TargetBranch.String()),
			logging.String(logging.FieldEventID, event.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the provisional entry exists; record the inscription in the audit log manually"),
		)
		return event, fmt.Errorf("%w: %w", ErrEventAppend, err)
	}

	r.logger.Info("inscription recorded",
		logging.String(logging.FieldEventType, "inscription_recorded"),
		logging.String(logging.FieldLicenseID, event.LicenseID),
		logging.String(logging.FieldBranch, event.TargetBranch.String()),
		logging.String(logging.FieldAgent, event.ActingAgent),
		logging.String(logging.FieldEventID, event.ID),
	)
	return event, nil
}

// RecordTransfer appends a TRANSFER event. The provisional ledger is not
// touched.
func (r *Recorder) RecordTransfer(ctx context.Context, transfer Transfer) (ledger.EventRecord, error) {
	event := ledger.EventRecord{
		ID:               r.newID(),
		Timestamp:        r.clock.Now(),
		Kind:             ledger.EventTransfer,
		ActingAgent:      strings.TrimSpace(transfer.Agent),
		LicenseID:        roster.NormalizeLicense(transfer.LicenseID),
		DriverName:       transfer.DriverName,
		SourceBranch:     transfer.Source,
		TargetBranch:     transfer.Target,
		ResponsibleAgent: transfer.Responsible,
		Reason:           strings.TrimSpace(transfer.Reason),
	}
	if err := r.store.AppendEvent(ctx, event); err != nil {
		return ledger.EventRecord{}, fmt.Errorf("append transfer event: %w", err)
	}

	r.logger.Info("transfer recorded",
		logging.String(logging.FieldEventType, "transfer_recorded"),
		logging.String(logging.FieldLicenseID, event.LicenseID),
		logging.String(logging.FieldBranch, event.SourceBranch.String()),
		logging.String("target_branch", event.TargetBranch.String()),
		logging.String(logging.FieldAgent, event.ActingAgent),
		logging.String(logging.FieldEventID, event.ID),
	)
	return event, nil
}
