package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresMemoization_IgnoresOtherTools(t *testing.T) {
	assert.False(t, RequiresMemoization("sort_array", map[string]any{}, map[string]any{}))
}

func TestRequiresMemoization_FibPath(t *testing.T) {
	assert.True(t, RequiresMemoization("write_file", map[string]any{"path": "FIB.txt", "content": "x"}, map[string]any{}))
}

func TestRequiresMemoization_LongContent(t *testing.T) {
	args := map[string]any{"path": "out.txt", "content": strings.Repeat("a", 400)}
	assert.True(t, RequiresMemoization("write_file", args, map[string]any{}))
}

func TestRequiresMemoization_ManyCommas(t *testing.T) {
	args := map[string]any{"path": "out.txt", "content": strings.Repeat("1,", 21)}
	assert.True(t, RequiresMemoization("write_file", args, map[string]any{}))
}

func TestRequiresMemoization_ResultWroteSignal(t *testing.T) {
	args := map[string]any{"path": "out.txt", "content": strings.Repeat("a", 200)}
	result := map[string]any{"result": "wrote 200 bytes"}
	assert.True(t, RequiresMemoization("write_file", args, result))
}

func TestRequiresMemoization_ShortContentNoSignal(t *testing.T) {
	args := map[string]any{"path": "out.txt", "content": "abc"}
	assert.False(t, RequiresMemoization("write_file", args, map[string]any{}))
}

func TestSuggestedMemoKey_WriteFileUsesPath(t *testing.T) {
	key := SuggestedMemoKey("write_file", map[string]any{"path": "fib.txt"}, map[string]any{})
	assert.Equal(t, "write_file:fib.txt", key)
}

func TestSuggestedMemoKey_OtherToolsHashArgs(t *testing.T) {
	key := SuggestedMemoKey("sort_array", map[string]any{"items": []any{1, 2}}, map[string]any{})
	assert.True(t, strings.HasPrefix(key, "sort_array:"))
	assert.Len(t, key, len("sort_array:")+12)
}
