package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sentinel/internal/roster"
)

// Cycle records one applied import.
type Cycle struct {
	ID                string    `json:"cycle_id" yaml:"cycle_id"`
	ImportedAt        time.Time `json:"imported_at" yaml:"imported_at"`
	ImportedBy        string    `json:"imported_by" yaml:"imported_by"`
	ReplacedA         bool      `json:"replaced_a" yaml:"replaced_a"`
	ReplacedB         bool      `json:"replaced_b" yaml:"replaced_b"`
	RowsA             int       `json:"rows_a" yaml:"rows_a"`
	RowsB             int       `json:"rows_b" yaml:"rows_b"`
	SHA256A           string    `json:"sha256_a,omitempty" yaml:"sha256_a,omitempty"`
	SHA256B           string    `json:"sha256_b,omitempty" yaml:"sha256_b,omitempty"`
	ClearedEntries    int       `json:"cleared_entries" yaml:"cleared_entries"`
	ClearedUnreadable bool      `json:"cleared_unreadable,omitempty" yaml:"cleared_unreadable,omitempty"`
}

// Pending is a staged cycle awaiting the outcome of the file swap.
type Pending struct {
	tx    *sql.Tx
	cycle Cycle
	done  bool
}

// Commit makes the staged cycle durable.
func (p *Pending) Commit() error {
	if p == nil || p.done {
		return nil
	}
	p.done = true
	if err := p.tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit cycle %s: %v", ErrArchive, p.cycle.ID, err)
	}
	return nil
}

// Rollback discards the staged cycle. It is a no-op after Commit.
func (p *Pending) Rollback() error {
	if p == nil || p.done {
		return nil
	}
	p.done = true
	if err := p.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: rollback cycle %s: %v", ErrArchive, p.cycle.ID, err)
	}
	return nil
}

// Begin stages a cycle and the provisional entries it clears inside one
// transaction. The caller must Commit or Rollback the result.
func (s *Store) Begin(ctx context.Context, cycle Cycle, cleared []roster.DriverRecord) (*Pending, error) {
	ctx = ensureContext(ctx)
	if cycle.ID == "" {
		return nil, fmt.Errorf("%w: cycle id is empty", ErrArchive)
	}
	if cycle.ImportedAt.IsZero() {
		cycle.ImportedAt = time.Now().UTC()
	}
	if cycle.ClearedEntries == 0 {
		cycle.ClearedEntries = len(cleared)
	}

	var tx *sql.Tx
	if err := retryOnBusy(ctx, func() error {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		return err
	}); err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrArchive, err)
	}
	pending := &Pending{tx: tx, cycle: cycle}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO import_cycles (
            cycle_id, imported_at, imported_by, replaced_a, replaced_b,
            rows_a, rows_b, sha256_a, sha256_b, cleared_entries, cleared_unreadable
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cycle.ID,
		cycle.ImportedAt.UTC().Format(time.RFC3339Nano),
		cycle.ImportedBy,
		boolToInt(cycle.ReplacedA),
		boolToInt(cycle.ReplacedB),
		cycle.RowsA,
		cycle.RowsB,
		nullableString(cycle.SHA256A),
		nullableString(cycle.SHA256B),
		cycle.ClearedEntries,
		boolToInt(cycle.ClearedUnreadable),
	)
	if err != nil {
		_ = pending.Rollback()
		return nil, fmt.Errorf("%w: insert cycle: %v", ErrArchive, err)
	}

	for i, record := range cleared {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cleared_entries (
                cycle_id, position, full_name, license_id, responsible_agent,
                completed_trip_count, phone, branch, last_activity_at, registered_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cycle.ID,
			i,
			record.FullName,
			record.LicenseID,
			record.ResponsibleAgent,
			record.CompletedTrips,
			nullableString(record.Phone),
			string(record.Branch),
			nullableTime(record.LastActivityAt),
			nullableTime(record.RegisteredAt),
		)
		if err != nil {
			_ = pending.Rollback()
			return nil, fmt.Errorf("%w: insert cleared entry %d: %v", ErrArchive, i, err)
		}
	}
	return pending, nil
}

const cycleColumns = "cycle_id, imported_at, imported_by, replaced_a, replaced_b, rows_a, rows_b, sha256_a, sha256_b, cleared_entries, cleared_unreadable"

// ListCycles returns recorded cycles, newest first. A limit <= 0 returns all.
func (s *Store) ListCycles(ctx context.Context, limit int) ([]Cycle, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + cycleColumns + ` FROM import_cycles ORDER BY imported_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, cycle)
	}
	return cycles, rows.Err()
}

// GetCycle fetches one cycle by id.
func (s *Store) GetCycle(ctx context.Context, id string) (Cycle, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+cycleColumns+` FROM import_cycles WHERE cycle_id = ?`, id)
	cycle, err := scanCycle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Cycle{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Cycle{}, fmt.Errorf("get cycle: %w", err)
	}
	return cycle, nil
}

// ClearedEntries returns the provisional entries removed by a cycle in their
// original ledger order.
func (s *Store) ClearedEntries(ctx context.Context, cycleID string) ([]roster.DriverRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT full_name, license_id, responsible_agent, completed_trip_count, phone, branch, last_activity_at, registered_at
         FROM cleared_entries WHERE cycle_id = ? ORDER BY position`,
		cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cleared entries: %w", err)
	}
	defer rows.Close()

	var records []roster.DriverRecord
	for rows.Next() {
		var (
			record       roster.DriverRecord
			phone        sql.NullString
			branch       string
			lastActivity sql.NullString
			registered   sql.NullString
		)
		if err := rows.Scan(
			&record.FullName,
			&record.LicenseID,
			&record.ResponsibleAgent,
			&record.CompletedTrips,
			&phone,
			&branch,
			&lastActivity,
			&registered,
		); err != nil {
			return nil, fmt.Errorf("scan cleared entry: %w", err)
		}
		record.Phone = phone.String
		record.Branch = roster.Branch(branch)
		record.LastActivityAt = parseNullableTime(lastActivity)
		record.RegisteredAt = parseNullableTime(registered)
		records = append(records, record)
	}
	return records, rows.Err()
}
