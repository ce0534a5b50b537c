package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveLoadLatest(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save("run-1", 1, "plan", map[string]any{"step": 1}))
	require.NoError(t, store.Save("run-1", 2, "execute", map[string]any{"step": 2}))

	raw, found, err := store.LoadLatest("run-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(raw), `"step":2`)
}

func TestLoadLatest_Missing(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.LoadLatest("nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestList_OrderedByInsertion(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save("run-1", 1, "init", map[string]any{}))
	require.NoError(t, store.Save("run-1", 1, "plan", map[string]any{}))
	require.NoError(t, store.Save("run-1", 2, "execute", map[string]any{}))

	records, err := store.List("run-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "init", records[0].NodeName)
	assert.Equal(t, "plan", records[1].NodeName)
	assert.Equal(t, "execute", records[2].NodeName)
}
