package memo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memo.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGet_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	res, err := store.Put("run-1", "write_file:fib.txt", map[string]any{"content": "0,1,1"}, DefaultNamespace, "write_file", 3)
	require.NoError(t, err)
	assert.True(t, res.Inserted)
	assert.NotEmpty(t, res.ValueHash)

	got, err := store.Get("run-1", "write_file:fib.txt", DefaultNamespace)
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, res.ValueHash, got.ValueHash)
}

func TestGet_Miss(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Get("run-1", "nope", DefaultNamespace)
	require.NoError(t, err)
	assert.False(t, got.Found)
}

func TestPut_UpsertsOnConflict(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Put("run-1", "k", "v1", DefaultNamespace, "tool", 1)
	require.NoError(t, err)
	_, err = store.Put("run-1", "k", "v2", DefaultNamespace, "tool", 2)
	require.NoError(t, err)

	got, err := store.Get("run-1", "k", DefaultNamespace)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Value)

	entries, err := store.ListEntries("run-1", DefaultNamespace)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Step)
}

func TestGetLatest_AcrossRuns(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Put("run-a", "shared-key", "old", CacheNamespace, "tool", 1)
	require.NoError(t, err)
	_, err = store.Put("run-b", "shared-key", "new", CacheNamespace, "tool", 1)
	require.NoError(t, err)

	latest, err := store.GetLatest("shared-key", CacheNamespace)
	require.NoError(t, err)
	assert.True(t, latest.Found)
	assert.Equal(t, "run-b", latest.RunID)
	assert.Equal(t, "new", latest.Value)
}

func TestListEntries_OrderedByStepThenInsertion(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Put("run-1", "b", "v", DefaultNamespace, "tool", 2)
	require.NoError(t, err)
	_, err = store.Put("run-1", "a", "v", DefaultNamespace, "tool", 1)
	require.NoError(t, err)

	entries, err := store.ListEntries("run-1", DefaultNamespace)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)
}

func TestHashJSON_Deterministic(t *testing.T) {
	h1, err := HashJSON(map[string]any{"b": 1, "a": 2})
	require.NoError(t, err)
	h2, err := HashJSON(map[string]any{"a": 2, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
