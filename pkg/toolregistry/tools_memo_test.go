package toolregistry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/agentgraph/pkg/memo"
)

func openTestMemoStore(t *testing.T) *memo.SQLiteStore {
	t.Helper()
	store, err := memo.Open(filepath.Join(t.TempDir(), "memo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMemoizeTool_RoundTripWithRetrieve(t *testing.T) {
	store := openTestMemoStore(t)
	memoizeTool := MemoizeTool{Store: store}
	retrieveTool := RetrieveMemoTool{Store: store}

	putOut := memoizeTool.Execute(map[string]any{"key": "k1", "value": "v1", "run_id": "run-1"})
	require.Equal(t, "memoized", putOut["result"])

	getOut := retrieveTool.Execute(map[string]any{"key": "k1", "run_id": "run-1"})
	assert.Equal(t, true, getOut["found"])
	assert.Equal(t, "v1", getOut["value"])
}

func TestMemoizeTool_RequiresKeyValueRunID(t *testing.T) {
	store := openTestMemoStore(t)
	tool := MemoizeTool{Store: store}

	assert.Contains(t, tool.Execute(map[string]any{"value": "v", "run_id": "r"}), "error")
	assert.Contains(t, tool.Execute(map[string]any{"key": "k", "run_id": "r"}), "error")
	assert.Contains(t, tool.Execute(map[string]any{"key": "k", "value": "v"}), "error")
}

func TestRetrieveMemoTool_Miss(t *testing.T) {
	store := openTestMemoStore(t)
	out := RetrieveMemoTool{Store: store}.Execute(map[string]any{"key": "missing", "run_id": "run-1"})
	assert.Equal(t, false, out["found"])
}
