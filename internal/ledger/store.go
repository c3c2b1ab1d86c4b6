package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sentinel/internal/config"
	"sentinel/internal/roster"
)

// File names inside the data directory.
const (
	SnapshotAFile   = "snapshot_a.csv"
	SnapshotBFile   = "snapshot_b.csv"
	ProvisionalFile = "provisional.csv"
	EventsFile      = "events.csv"
	LockFile        = ".sentinel.lock"
)

const defaultLockTimeout = 10 * time.Second

// Slot identifies one of the two snapshot tables.
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

func (s Slot) fileName() string {
	if s == SlotB {
		return SnapshotBFile
	}
	return SnapshotAFile
}

func (s Slot) String() string {
	if s == SlotB {
		return "b"
	}
	return "a"
}

// Options configures a Store.
type Options struct {
	Dir         string
	Delimiter   rune
	LockTimeout time.Duration
}

// OptionsFromConfig derives store options from application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dir:         cfg.Paths.DataDir,
		Delimiter:   cfg.Delimiter(),
		LockTimeout: cfg.LockTimeout(),
	}
}

// Store reads and appends the ledger files of one data directory.
type Store struct {
	dir         string
	delimiter   rune
	lockTimeout time.Duration
	lockPath    string
}

// Open prepares a store rooted at opts.Dir, creating the directory if needed.
func Open(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, errors.New("ledger: data directory not set")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = defaultLockTimeout
	}
	return &Store{
		dir:         opts.Dir,
		delimiter:   opts.Delimiter,
		lockTimeout: opts.LockTimeout,
		lockPath:    filepath.Join(opts.Dir, LockFile),
	}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Delimiter returns the field delimiter of the store files.
func (s *Store) Delimiter() rune { return s.delimiter }

// Path returns the absolute path of a store file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// State is one consistent read of the identity store.
type State struct {
	SnapshotA *roster.Table
	SnapshotB *roster.Table

	// Provisional holds the in-flight registrations. When the ledger could
	// not be parsed, Provisional is nil and ProvisionalErr explains why.
	Provisional    []roster.DriverRecord
	ProvisionalErr error
}

// ReadState reads both snapshots and the provisional ledger under one shared
// lock. Missing files read as empty tables.
func (s *Store) ReadState(ctx context.Context) (State, error) {
	var state State
	err := s.withLock(ctx, false, func() error {
		var err error
		if state.SnapshotA, _, err = readTableFile(s.Path(SnapshotAFile), s.delimiter); err != nil {
			return err
		}
		if state.SnapshotB, _, err = readTableFile(s.Path(SnapshotBFile), s.delimiter); err != nil {
			return err
		}
		state.Provisional, state.ProvisionalErr = s.readProvisional()
		return nil
	})
	if err != nil {
		return State{}, err
	}
	return state, nil
}

// ReadSnapshot reads one snapshot table; a missing file yields nil.
func (s *Store) ReadSnapshot(ctx context.Context, slot Slot) (*roster.Table, error) {
	var table *roster.Table
	err := s.withLock(ctx, false, func() error {
		var err error
		table, _, err = readTableFile(s.Path(slot.fileName()), s.delimiter)
		return err
	})
	return table, err
}

// appendRow appends one row to name, writing the header first when the file
// is new or empty. The write is synced before returning.
func (s *Store) appendRow(ctx context.Context, name string, header, row []string) error {
	return s.withLock(ctx, true, func() error {
		path := s.Path(name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("%w: open %s: %v", ErrAppend, path, err)
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return fmt.Errorf("%w: stat %s: %v", ErrAppend, path, err)
		}

		writer := csv.NewWriter(file)
		writer.Comma = s.delimiter
		if info.Size() == 0 {
			if err := writer.Write(header); err != nil {
				return fmt.Errorf("%w: write header %s: %v", ErrAppend, path, err)
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrAppend, path, err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("%w: flush %s: %v", ErrAppend, path, err)
		}
		if err := file.Sync(); err != nil {
			return fmt.Errorf("%w: sync %s: %v", ErrAppend, path, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("%w: close %s: %v", ErrAppend, path, err)
		}
		return nil
	})
}
