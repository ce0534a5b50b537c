package toolregistry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/agentgraph/pkg/memo"
)

func TestBuild_RegistersAllTools(t *testing.T) {
	store, err := memo.Open(filepath.Join(t.TempDir(), "memo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := Build(store)
	for _, name := range []string{
		"repeat_message", "sort_array", "string_ops", "math_stats", "write_file",
		"text_analysis", "data_analysis", "json_parser", "regex_matcher",
		"task_list_parser", "memoize", "retrieve_memo",
	} {
		assert.True(t, reg.Has(name), "expected tool %q to be registered", name)
	}
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	reg := NewRegistry(RepeatMessageTool{})
	out := reg.Execute("no_such_tool", nil)
	assert.Contains(t, out, "error")
}
