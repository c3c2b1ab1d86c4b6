package ledger

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/roster"
)

func TestApplyImportRollsBackOnSwapFailure(t *testing.T) {
	store, err := Open(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	table := func(license string) *roster.Table {
		return &roster.Table{Header: []string{"Permis"}, Rows: [][]string{{license}}}
	}
	_, err = store.ApplyImport(ctx, ImportPlan{A: table("OLD-A"), B: table("OLD-B")})
	require.NoError(t, err)
	require.NoError(t, store.AppendProvisional(ctx, roster.DriverRecord{LicenseID: "P1", Branch: "SY"}))

	original := rename
	t.Cleanup(func() { rename = original })
	rename = func(from, to string) error {
		if strings.HasSuffix(to, SnapshotBFile) && strings.Contains(from, ".tmp") {
			return errors.New("disk full")
		}
		return original(from, to)
	}

	_, err = store.ApplyImport(ctx, ImportPlan{A: table("NEW-A"), B: table("NEW-B")})
	require.ErrorIs(t, err, ErrImport)
	assert.Contains(t, err.Error(), "disk full")

	state, err := store.ReadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"OLD-A"}}, state.SnapshotA.Rows)
	assert.Equal(t, [][]string{{"OLD-B"}}, state.SnapshotB.Rows)
	assert.Len(t, state.Provisional, 1)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), backupSuffix), "backup %s left behind", entry.Name())
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), "staged file %s left behind", entry.Name())
	}
}
