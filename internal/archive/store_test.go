package archive_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sentinel/internal/archive"
	"sentinel/internal/roster"
	"sentinel/internal/testsupport"
)

func TestBeginCommitRecordsCycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenArchive(t, cfg)
	ctx := context.Background()

	registered := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	cleared := []roster.DriverRecord{
		{FullName: "Awa", LicenseID: "P1", ResponsibleAgent: "Fatou", Branch: "SY", RegisteredAt: &registered},
		{FullName: "Binta", LicenseID: "P2", ResponsibleAgent: "Moussa", CompletedTrips: 3, Phone: "22177", Branch: "NDONGO"},
	}
	pending, err := store.Begin(ctx, archive.Cycle{
		ID:         "cycle-1",
		ImportedAt: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		ImportedBy: "ADMIN",
		ReplacedA:  true,
		RowsA:      120,
		SHA256A:    "abc",
	}, cleared)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := pending.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	cycle, err := store.GetCycle(ctx, "cycle-1")
	if err != nil {
		t.Fatalf("GetCycle failed: %v", err)
	}
	if cycle.ImportedBy != "ADMIN" || !cycle.ReplacedA || cycle.ReplacedB || cycle.RowsA != 120 {
		t.Fatalf("unexpected cycle: %#v", cycle)
	}
	if cycle.ClearedEntries != 2 {
		t.Fatalf("expected cleared count 2, got %d", cycle.ClearedEntries)
	}
	if cycle.SHA256B != "" {
		t.Fatalf("expected empty digest for untouched branch, got %q", cycle.SHA256B)
	}

	entries, err := store.ClearedEntries(ctx, "cycle-1")
	if err != nil {
		t.Fatalf("ClearedEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 cleared entries, got %d", len(entries))
	}
	if entries[0].RegisteredAt == nil || !entries[0].RegisteredAt.Equal(registered) {
		t.Fatalf("registered_at not preserved: %#v", entries[0])
	}
	if entries[1].Phone != "22177" || entries[1].CompletedTrips != 3 || entries[1].Branch != "NDONGO" {
		t.Fatalf("unexpected second entry: %#v", entries[1])
	}
}

func TestRollbackDiscardsCycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenArchive(t, cfg)
	ctx := context.Background()

	pending, err := store.Begin(ctx, archive.Cycle{ID: "cycle-x", ImportedBy: "ADMIN"}, nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := pending.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if err := pending.Commit(); err != nil {
		t.Fatalf("Commit after rollback should be a no-op: %v", err)
	}

	if _, err := store.GetCycle(ctx, "cycle-x"); !errors.Is(err, archive.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCyclesNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenArchive(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		pending, err := store.Begin(ctx, archive.Cycle{ID: id, ImportedBy: "ADMIN", ImportedAt: base.AddDate(0, 0, 7*i)}, nil)
		if err != nil {
			t.Fatalf("Begin %s failed: %v", id, err)
		}
		if err := pending.Commit(); err != nil {
			t.Fatalf("Commit %s failed: %v", id, err)
		}
	}

	cycles, err := store.ListCycles(ctx, 2)
	if err != nil {
		t.Fatalf("ListCycles failed: %v", err)
	}
	if len(cycles) != 2 || cycles[0].ID != "third" || cycles[1].ID != "second" {
		t.Fatalf("unexpected cycles: %#v", cycles)
	}

	all, err := store.ListCycles(ctx, 0)
	if err != nil {
		t.Fatalf("ListCycles(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 cycles, got %d", len(all))
	}
}

func TestBeginRejectsEmptyID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenArchive(t, cfg)

	if _, err := store.Begin(context.Background(), archive.Cycle{}, nil); !errors.Is(err, archive.ErrArchive) {
		t.Fatalf("expected ErrArchive, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), archive.FileName)
	store, err := archive.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	pending, err := store.Begin(context.Background(), archive.Cycle{ID: "persisted", ImportedBy: "ADMIN"}, nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := pending.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := archive.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetCycle(context.Background(), "persisted"); err != nil {
		t.Fatalf("expected persisted cycle, got %v", err)
	}
}

func TestOpenRefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), archive.FileName)
	store, err := archive.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := archive.Open(path); !errors.Is(err, archive.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
