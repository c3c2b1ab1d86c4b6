package testsupport

import (
	"testing"

	"sentinel/internal/archive"
	"sentinel/internal/config"
	"sentinel/internal/ledger"
)

// MustOpenArchive opens an archive.Store for tests and registers cleanup.
func MustOpenArchive(t testing.TB, cfg *config.Config) *archive.Store {
	t.Helper()

	store, err := archive.OpenFromConfig(cfg)
	if err != nil {
		t.Fatalf("archive.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenLedger opens the ledger store rooted at the config data directory.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(ledger.OptionsFromConfig(cfg))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	return store
}
