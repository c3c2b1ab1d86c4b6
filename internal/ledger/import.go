package ledger

import (
	"context"
	"fmt"
	"io"
	"os"

	"sentinel/internal/fileutil"
	"sentinel/internal/roster"
)

// rename is swapped in tests to inject swap failures.
var rename = os.Rename

const backupSuffix = ".bak"

// ImportPlan lists the snapshot tables to install. A nil table leaves that
// branch's snapshot untouched.
type ImportPlan struct {
	A *roster.Table
	B *roster.Table

	// BeforeCommit runs under the exclusive lock after staging and before any
	// file is swapped. An error aborts the import with the store unchanged.
	BeforeCommit func(pending ImportResult) error
}

// ImportResult describes an applied import.
type ImportResult struct {
	ReplacedA bool   `json:"replaced_a" yaml:"replaced_a"`
	ReplacedB bool   `json:"replaced_b" yaml:"replaced_b"`
	RowsA     int    `json:"rows_a" yaml:"rows_a"`
	RowsB     int    `json:"rows_b" yaml:"rows_b"`
	SHA256A   string `json:"sha256_a,omitempty" yaml:"sha256_a,omitempty"`
	SHA256B   string `json:"sha256_b,omitempty" yaml:"sha256_b,omitempty"`

	// Cleared holds the provisional entries removed by the import. When the
	// ledger could not be parsed, ClearedUnreadable is set and Cleared is nil.
	Cleared           []roster.DriverRecord `json:"cleared" yaml:"cleared"`
	ClearedUnreadable bool                  `json:"cleared_unreadable,omitempty" yaml:"cleared_unreadable,omitempty"`
}

type stagedSnapshot struct {
	slot   Slot
	staged fileutil.Staged
}

type swappedSnapshot struct {
	target    string
	backup    string
	hadBackup bool
}

// ApplyImport replaces the supplied snapshots and truncates the provisional
// ledger as one step. Readers holding the shared lock observe either the old
// state or the new one. On failure the previous snapshots and ledger stay in
// place and the error wraps ErrImport.
func (s *Store) ApplyImport(ctx context.Context, plan ImportPlan) (ImportResult, error) {
	var result ImportResult
	staged, err := s.stageSnapshots(plan, &result)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrImport, err)
	}
	defer func() {
		for _, item := range staged {
			_ = fileutil.RemoveIfExists(item.staged.Path)
		}
	}()

	err = s.withLock(ctx, true, func() error {
		cleared, readErr := s.readProvisional()
		result.Cleared = cleared
		result.ClearedUnreadable = readErr != nil

		if plan.BeforeCommit != nil {
			if err := plan.BeforeCommit(result); err != nil {
				return fmt.Errorf("before commit: %w", err)
			}
		}
		return s.swapSnapshots(staged)
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrImport, err)
	}
	return result, nil
}

func (s *Store) stageSnapshots(plan ImportPlan, result *ImportResult) ([]stagedSnapshot, error) {
	var staged []stagedSnapshot
	cleanup := func() {
		for _, item := range staged {
			_ = fileutil.RemoveIfExists(item.staged.Path)
		}
	}
	for _, entry := range []struct {
		slot  Slot
		table *roster.Table
	}{{SlotA, plan.A}, {SlotB, plan.B}} {
		if entry.table == nil {
			continue
		}
		table := entry.table
		file, err := fileutil.Stage(s.dir, "."+entry.slot.fileName()+"-*.tmp", func(w io.Writer) error {
			return EncodeTable(w, s.delimiter, table)
		})
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("stage snapshot %s: %w", entry.slot, err)
		}
		staged = append(staged, stagedSnapshot{slot: entry.slot, staged: file})
		switch entry.slot {
		case SlotA:
			result.ReplacedA, result.RowsA, result.SHA256A = true, table.Len(), file.SHA256
		case SlotB:
			result.ReplacedB, result.RowsB, result.SHA256B = true, table.Len(), file.SHA256
		}
	}
	return staged, nil
}

// swapSnapshots must run under the exclusive lock.
func (s *Store) swapSnapshots(staged []stagedSnapshot) error {
	var swapped []swappedSnapshot
	rollback := func(cause error) error {
		for i := len(swapped) - 1; i >= 0; i-- {
			item := swapped[i]
			if item.hadBackup {
				if err := rename(item.backup, item.target); err != nil {
					return fmt.Errorf("%v; restore %s: %w", cause, item.target, err)
				}
				continue
			}
			if err := fileutil.RemoveIfExists(item.target); err != nil {
				return fmt.Errorf("%v; remove %s: %w", cause, item.target, err)
			}
		}
		return cause
	}

	for _, item := range staged {
		target := s.Path(item.slot.fileName())
		entry := swappedSnapshot{target: target, backup: target + backupSuffix}
		exists, err := fileutil.Exists(target)
		if err != nil {
			return rollback(fmt.Errorf("stat %s: %w", target, err))
		}
		if exists {
			if err := rename(target, entry.backup); err != nil {
				return rollback(fmt.Errorf("back up %s: %w", target, err))
			}
			entry.hadBackup = true
		}
		if err := rename(item.staged.Path, target); err != nil {
			if entry.hadBackup {
				swapped = append(swapped, entry)
			}
			return rollback(fmt.Errorf("install %s: %w", target, err))
		}
		swapped = append(swapped, entry)
	}

	if err := fileutil.RemoveIfExists(s.Path(ProvisionalFile)); err != nil {
		return rollback(fmt.Errorf("truncate provisional ledger: %w", err))
	}
	for _, item := range swapped {
		if item.hadBackup {
			_ = fileutil.RemoveIfExists(item.backup)
		}
	}
	return nil
}
