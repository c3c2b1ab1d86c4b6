package ledger_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/ledger"
	"sentinel/internal/roster"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(ledger.Options{Dir: t.TempDir(), LockTimeout: 2 * time.Second})
	require.NoError(t, err)
	return store
}

func timePtr(t time.Time) *time.Time { return &t }

func TestReadStateOnEmptyDirectory(t *testing.T) {
	store := openStore(t)
	state, err := store.ReadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, state.SnapshotA.Len())
	assert.Equal(t, 0, state.SnapshotB.Len())
	assert.Empty(t, state.Provisional)
	assert.NoError(t, state.ProvisionalErr)
}

func TestProvisionalRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	registered := time.Date(2026, 10, 19, 9, 30, 0, 123, time.UTC)

	record := roster.DriverRecord{
		FullName:         "Awa; \"Diop\" Ndiaye",
		LicenseID:        "P-77",
		ResponsibleAgent: "Fatou",
		CompletedTrips:   0,
		Phone:            "221770000001",
		Branch:           "SY",
		RegisteredAt:     timePtr(registered),
	}
	require.NoError(t, store.AppendProvisional(ctx, record))
	require.NoError(t, store.AppendProvisional(ctx, record))

	records, err := store.ReadProvisional(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, record, records[0])
	assert.Equal(t, record, records[1])

	raw, err := os.ReadFile(store.Path(ledger.ProvisionalFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3, "header written once")
	assert.Equal(t, strings.Join(ledger.ProvisionalColumns, ";"), lines[0])
}

func TestReadProvisionalReportsCorruption(t *testing.T) {
	store := openStore(t)
	path := store.Path(ledger.ProvisionalFile)
	content := strings.Join(ledger.ProvisionalColumns, ";") + "\nAwa;P1;Fatou;many;;SY;;\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := store.ReadProvisional(context.Background())
	require.ErrorIs(t, err, ledger.ErrCorrupt)

	state, err := store.ReadState(context.Background())
	require.NoError(t, err, "state reads tolerate a corrupt ledger")
	assert.Nil(t, state.Provisional)
	assert.ErrorIs(t, state.ProvisionalErr, ledger.ErrCorrupt)
	assert.Equal(t, "corrupt", ledger.ErrorKind(state.ProvisionalErr))
}

func TestReadProvisionalRejectsForeignHeader(t *testing.T) {
	store := openStore(t)
	require.NoError(t, os.WriteFile(store.Path(ledger.ProvisionalFile), []byte("a;b\n1;2\n"), 0o644))
	_, err := store.ReadProvisional(context.Background())
	assert.ErrorIs(t, err, ledger.ErrCorrupt)
}

func TestEventsAppendInOrder(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	first := ledger.EventRecord{
		ID: "e1", Timestamp: base, Kind: ledger.EventInscription,
		ActingAgent: "Fatou", LicenseID: "P1", DriverName: "Awa",
		TargetBranch: "SY", ResponsibleAgent: "Fatou",
	}
	second := ledger.EventRecord{
		ID: "e2", Timestamp: base.Add(time.Minute), Kind: ledger.EventTransfer,
		ActingAgent: "Moussa", LicenseID: "P1", DriverName: "Awa",
		SourceBranch: "SY", TargetBranch: "NDONGO", ResponsibleAgent: "Fatou",
		Reason: "changement de véhicule; urgent",
	}
	require.NoError(t, store.AppendEvent(ctx, first))
	require.NoError(t, store.AppendEvent(ctx, second))

	events, err := store.ReadEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.EventRecord{first, second}, events)
}

func TestAppendEventRejectsIncompleteRecords(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	err := store.AppendEvent(ctx, ledger.EventRecord{Kind: ledger.EventInscription})
	assert.ErrorIs(t, err, ledger.ErrAppend)

	err = store.AppendEvent(ctx, ledger.EventRecord{ID: "x", Kind: "DELETE"})
	assert.ErrorIs(t, err, ledger.ErrAppend)

	_, statErr := os.Stat(store.Path(ledger.EventsFile))
	assert.True(t, os.IsNotExist(statErr), "rejected events leave no file behind")
}

func TestAppendFailsWhenDataDirIsGone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store, err := ledger.Open(ledger.Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	err = store.AppendProvisional(context.Background(), roster.DriverRecord{LicenseID: "P1", Branch: "SY"})
	require.Error(t, err)
}

func TestConcurrentAppendsAreAllRecorded(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.AppendProvisional(ctx, roster.DriverRecord{LicenseID: "SAME", Branch: "SY", ResponsibleAgent: "A"})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	records, err := store.ReadProvisional(ctx)
	require.NoError(t, err)
	assert.Len(t, records, writers)
}

func TestLockTimeoutReturnsErrLocked(t *testing.T) {
	dir := t.TempDir()
	store, err := ledger.Open(ledger.Options{Dir: dir, LockTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.ReadState(ctx)
	require.ErrorIs(t, err, ledger.ErrLocked)
	assert.Equal(t, "locked", ledger.ErrorKind(err))
}

func TestSharedReadTimesOutWhileExclusiveLockHeld(t *testing.T) {
	dir := t.TempDir()
	store, err := ledger.Open(ledger.Options{Dir: dir, LockTimeout: 100 * time.Millisecond})
	require.NoError(t, err)

	holder := flock.New(filepath.Join(dir, ledger.LockFile))
	require.NoError(t, holder.Lock())
	t.Cleanup(func() { _ = holder.Unlock() })

	started := time.Now()
	_, err = store.ReadState(context.Background())
	require.ErrorIs(t, err, ledger.ErrLocked)
	assert.GreaterOrEqual(t, time.Since(started), 100*time.Millisecond)

	require.NoError(t, holder.Unlock())
	_, err = store.ReadState(context.Background())
	require.NoError(t, err)
}
