package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"sentinel/internal/archive"
	"sentinel/internal/ledger"
	"sentinel/internal/logging"
	"sentinel/internal/roster"
)

// Options configures a Service.
type Options struct {
	Store    *ledger.Store
	Archive  *archive.Store
	Branches roster.Branches
	// Columns overrides the snapshot synonym table; nil uses the defaults.
	Columns *roster.ColumnMap
	// Agents is the roster reported by AgentPerformance even without events.
	Agents []string
	Clock  *Clock
	NewID  func() string
	Logger *slog.Logger
}

// Service exposes the caller-facing registry operations. It keeps no state
// between calls besides its clock; every lookup re-reads the store.
type Service struct {
	store    *ledger.Store
	archive  *archive.Store
	branches roster.Branches
	columns  roster.ColumnMap
	agents   []string
	clock    *Clock
	newID    func() string
	recorder *Recorder
	logger   *slog.Logger
}

// NewService validates opts and builds a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("registry: ledger store is required")
	}
	if opts.Branches.A == "" || opts.Branches.B == "" || opts.Branches.A == opts.Branches.B {
		return nil, fmt.Errorf("registry: two distinct branches are required, got %q and %q", opts.Branches.A, opts.Branches.B)
	}
	columns := roster.DefaultColumnMap()
	if opts.Columns != nil {
		columns = *opts.Columns
	}
	clock := opts.Clock
	if clock == nil {
		clock = NewClock(nil)
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Service{
		store:    opts.Store,
		archive:  opts.Archive,
		branches: opts.Branches,
		columns:  columns,
		agents:   append([]string(nil), opts.Agents...),
		clock:    clock,
		newID:    newID,
		recorder: NewRecorder(opts.Store, clock, newID, opts.Logger),
		logger:   logging.NewComponentLogger(opts.Logger, "registry"),
	}, nil
}

// Branches returns the configured branch pair.
func (s *Service) Branches() roster.Branches { return s.branches }

// CheckIdentity resolves licenseID against a fresh view.
func (s *Service) CheckIdentity(ctx context.Context, licenseID string) (Outcome, error) {
	key := roster.NormalizeLicense(licenseID)
	if err := checkLicense(key); err != nil {
		return Outcome{}, err
	}
	view, err := s.BuildView(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Resolve(view, key), nil
}

// RegisterNew records an inscription without consulting the view first.
// Registering the same license twice leaves two provisional entries.
func (s *Service) RegisterNew(ctx context.Context, reg Registration) (ledger.EventRecord, error) {
	reg, err := s.validateRegistration(reg)
	if err != nil {
		return ledger.EventRecord{}, err
	}
	return s.recorder.RecordInscription(ctx, reg)
}

// RegisterIfFree looks the license up on a fresh view and records the
// inscription only when no row matches. Otherwise it returns the outcome
// with ErrIdentityTaken.
func (s *Service) RegisterIfFree(ctx context.Context, reg Registration) (ledger.EventRecord, Outcome, error) {
	reg, err := s.validateRegistration(reg)
	if err != nil {
		return ledger.EventRecord{}, Outcome{}, err
	}
	outcome, err := s.CheckIdentity(ctx, reg.LicenseID)
	if err != nil {
		return ledger.EventRecord{}, Outcome{}, err
	}
	if !outcome.Free() {
		return ledger.EventRecord{}, outcome, fmt.Errorf("%w: %s (owner branch %s)", ErrIdentityTaken, outcome.LicenseID, outcome.Owner.Branch)
	}
	event, err := s.recorder.RecordInscription(ctx, reg)
	return event, outcome, err
}

func (s *Service) validateRegistration(reg Registration) (Registration, error) {
	reg.Agent = strings.TrimSpace(reg.Agent)
	reg.LicenseID = roster.NormalizeLicense(reg.LicenseID)
	if reg.Agent == "" {
		return reg, fmt.Errorf("%w: agent is required", ErrInvalidRequest)
	}
	if err := checkLicense(reg.LicenseID); err != nil {
		return reg, err
	}
	branch, err := s.branches.Parse(string(reg.Branch))
	if err != nil {
		return reg, fmt.Errorf("%w: %v", ErrInvalidBranch, err)
	}
	reg.Branch = branch
	if reg.CompletedTrips < 0 {
		reg.CompletedTrips = 0
	}
	return reg, nil
}

// TransferReceipt confirms a recorded transfer request.
type TransferReceipt struct {
	Event        ledger.EventRecord  `json:"event" yaml:"event"`
	Owner        roster.DriverRecord `json:"owner" yaml:"owner"`
	FormerBranch roster.Branch       `json:"former_branch" yaml:"former_branch"`
	NewBranch    roster.Branch       `json:"new_branch" yaml:"new_branch"`
}

// RequestTransfer records a request to move the arbitrated owner of
// licenseID to the other branch. The id must be present in the view.
func (s *Service) RequestTransfer(ctx context.Context, agent, licenseID, reason string) (TransferReceipt, error) {
	agent = strings.TrimSpace(agent)
	reason = strings.TrimSpace(reason)
	if agent == "" {
		return TransferReceipt{}, fmt.Errorf("%w: agent is required", ErrInvalidRequest)
	}
	if reason == "" {
		return TransferReceipt{}, fmt.Errorf("%w: transfer reason is required", ErrInvalidRequest)
	}
	outcome, err := s.CheckIdentity(ctx, licenseID)
	if err != nil {
		return TransferReceipt{}, err
	}
	if outcome.Free() {
		return TransferReceipt{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, outcome.LicenseID)
	}

	owner := *outcome.Owner
	source := owner.Branch
	target := s.branches.Other(source)
	event, err := s.recorder.RecordTransfer(ctx, Transfer{
		Agent:       agent,
		LicenseID:   outcome.LicenseID,
		DriverName:  owner.FullName,
		Source:      source,
		Target:      target,
		Responsible: owner.ResponsibleAgent,
		Reason:      reason,
	})
	if err != nil {
		return TransferReceipt{}, err
	}
	return TransferReceipt{Event: event, Owner: owner, FormerBranch: source, NewBranch: target}, nil
}

// ImportRequest carries the upstream exports of one import. A nil reader
// leaves that branch's snapshot in place.
type ImportRequest struct {
	Agent     string
	A         io.Reader
	B         io.Reader
	Delimiter rune
	Encoding  string
}

// ImportOutcome describes an applied import.
type ImportOutcome struct {
	ledger.ImportResult `yaml:",inline"`
	CycleID             string `json:"cycle_id" yaml:"cycle_id"`
	Archived            bool   `json:"archived" yaml:"archived"`
}

// ImportSnapshots installs the supplied exports and clears the provisional
// ledger, starting a new cycle. When the archive is enabled the cycle is
// staged before the swap; a staging failure aborts the import. A commit
// failure after the swap returns the outcome together with an error wrapping
// archive.ErrArchive.
func (s *Service) ImportSnapshots(ctx context.Context, req ImportRequest) (ImportOutcome, error) {
	agent := strings.TrimSpace(req.Agent)
	if agent == "" {
		return ImportOutcome{}, fmt.Errorf("%w: agent is required", ErrInvalidRequest)
	}
	delimiter := req.Delimiter
	if delimiter == 0 {
		delimiter = s.store.Delimiter()
	}

	var plan ledger.ImportPlan
	for _, src := range []struct {
		name   string
		reader io.Reader
		target **roster.Table
	}{{"a", req.A, &plan.A}, {"b", req.B, &plan.B}} {
		if src.reader == nil {
			continue
		}
		table, err := ledger.DecodeTable(src.reader, delimiter, req.Encoding)
		if err != nil {
			return ImportOutcome{}, fmt.Errorf("%w: decode snapshot %s: %v", ledger.ErrImport, src.name, err)
		}
		*src.target = table
	}

	outcome := ImportOutcome{CycleID: s.newID()}
	logger := s.logger.With(logging.String(logging.FieldCycleID, outcome.CycleID), logging.String(logging.FieldAgent, agent))

	var pending *archive.Pending
	if s.archive != nil {
		importedAt := s.clock.Now()
		plan.BeforeCommit = func(p ledger.ImportResult) error {
			var err error
			pending, err = s.archive.Begin(ctx, archive.Cycle{
				ID:                outcome.CycleID,
				ImportedAt:        importedAt,
				ImportedBy:        agent,
				ReplacedA:         p.ReplacedA,
				ReplacedB:         p.ReplacedB,
				RowsA:             p.RowsA,
				RowsB:             p.RowsB,
				SHA256A:           p.SHA256A,
				SHA256B:           p.SHA256B,
				ClearedEntries:    len(p.Cleared),
				ClearedUnreadable: p.ClearedUnreadable,
			}, p.Cleared)
			return err
		}
	}

	result, err := s.store.ApplyImport(ctx, plan)
	if err != nil {
		if pending != nil {
			_ = pending.Rollback()
		}
		logging.ErrorWithContext(logger, "snapshot import failed", "import_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "previous snapshots and provisional entries are unchanged; retry the import"),
		)
		return ImportOutcome{}, err
	}
	outcome.ImportResult = result

	if result.ClearedUnreadable {
		logging.WarnWithContext(logger, "import cleared an unreadable provisional ledger", "ledger_parse_failed",
			logging.String(logging.FieldImpact, "cleared entries were not archived"),
		)
	}

	if pending != nil {
		if err := pending.Commit(); err != nil {
			logging.ErrorWithContext(logger, "import applied but not archived", "archive_commit_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the new snapshots are live; the cycle is missing from history"),
			)
			return outcome, err
		}
		outcome.Archived = true
	}

	logger.Info("snapshots imported",
		logging.String(logging.FieldEventType, "import_applied"),
		logging.Bool("replaced_a", result.ReplacedA),
		logging.Bool("replaced_b", result.ReplacedB),
		logging.Int("rows_a", result.RowsA),
		logging.Int("rows_b", result.RowsB),
		logging.Int("cleared_entries", len(result.Cleared)),
	)
	return outcome, nil
}

// ImportHistory lists archived import cycles, newest first.
func (s *Service) ImportHistory(ctx context.Context, limit int) ([]archive.Cycle, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.ListCycles(ctx, limit)
}

// ClearedEntries returns the provisional entries an archived cycle removed.
func (s *Service) ClearedEntries(ctx context.Context, cycleID string) ([]roster.DriverRecord, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	if _, err := s.archive.GetCycle(ctx, cycleID); err != nil {
		return nil, err
	}
	return s.archive.ClearedEntries(ctx, cycleID)
}

// DuplicatesReport returns every view row whose license id occurs more than
// once, in view order. Placeholder ids from exports without a license column
// are ignored. With a non-zero range, a group is kept when at least one of
// its rows has an activity date inside the range.
func (s *Service) DuplicatesReport(ctx context.Context, window DateRange) ([]roster.DriverRecord, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	view, err := s.BuildView(ctx)
	if err != nil {
		return nil, err
	}
	return duplicateRows(view, window), nil
}

func duplicateRows(view []roster.DriverRecord, window DateRange) []roster.DriverRecord {
	counts := make(map[string]int, len(view))
	inWindow := make(map[string]bool)
	for _, record := range view {
		if !reportable(record.LicenseID) {
			continue
		}
		counts[record.LicenseID]++
		if at := record.ActivityAt(); at != nil && window.Contains(*at) {
			inWindow[record.LicenseID] = true
		}
	}

	rows := []roster.DriverRecord{}
	for _, record := range view {
		if counts[record.LicenseID] < 2 {
			continue
		}
		if !window.IsZero() && !inWindow[record.LicenseID] {
			continue
		}
		rows = append(rows, record)
	}
	return rows
}

// checkLicense refuses an empty id and the placeholder that exports without
// a license column carry, since neither names a single driver.
func checkLicense(key string) error {
	switch key {
	case "":
		return fmt.Errorf("%w: license id is empty", ErrInvalidRequest)
	case roster.DefaultLicense:
		return fmt.Errorf("%w: %s is a placeholder, not a license id", ErrInvalidRequest, key)
	}
	return nil
}

func reportable(licenseID string) bool {
	return checkLicense(licenseID) == nil
}

// AgentScore is one line of the agent performance report.
type AgentScore struct {
	Agent            string `json:"agent" yaml:"agent"`
	Inscriptions     int    `json:"inscriptions" yaml:"inscriptions"`
	TransfersAgainst int    `json:"transfers_against" yaml:"transfers_against"`
	Score            int    `json:"score" yaml:"score"`
}

// AgentPerformance counts, per agent, the inscriptions they made and the
// transfers requested against drivers they were responsible for, within
// window. Roster agents without events are listed with zero counts. Results
// are ordered by score, then name.
func (s *Service) AgentPerformance(ctx context.Context, window DateRange) ([]AgentScore, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	events, err := s.store.ReadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return scoreAgents(events, s.agents, window), nil
}

func scoreAgents(events []ledger.EventRecord, names []string, window DateRange) []AgentScore {
	byAgent := make(map[string]*AgentScore)
	entry := func(name string) *AgentScore {
		score, ok := byAgent[name]
		if !ok {
			score = &AgentScore{Agent: name}
			byAgent[name] = score
		}
		return score
	}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			entry(name)
		}
	}
	for _, event := range events {
		if !window.Contains(event.Timestamp) {
			continue
		}
		switch event.Kind {
		case ledger.EventInscription:
			entry(event.ActingAgent).Inscriptions++
		case ledger.EventTransfer:
			entry(event.ResponsibleAgent).TransfersAgainst++
		}
	}

	scores := make([]AgentScore, 0, len(byAgent))
	for _, score := range byAgent {
		score.Score = score.Inscriptions - score.TransfersAgainst
		scores = append(scores, *score)
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Agent < scores[j].Agent
	})
	return scores
}

// Transfers lists TRANSFER events within window in append order.
func (s *Service) Transfers(ctx context.Context, window DateRange) ([]ledger.EventRecord, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	events, err := s.store.ReadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	transfers := []ledger.EventRecord{}
	for _, event := range events {
		if event.Kind == ledger.EventTransfer && window.Contains(event.Timestamp) {
			transfers = append(transfers, event)
		}
	}
	return transfers, nil
}
