package toolregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBalancedJSON_StripsSurroundingProse(t *testing.T) {
	text := `Sure, here you go: {"action":"finish","answer":"done"} thanks!`
	out, err := ExtractBalancedJSON(text)
	require.NoError(t, err)
	assert.Equal(t, `{"action":"finish","answer":"done"}`, out)
}

func TestExtractBalancedJSON_IgnoresBracesInsideStrings(t *testing.T) {
	text := `{"action":"tool","tool_name":"repeat_message","args":{"message":"contains } a brace"}}`
	out, err := ExtractBalancedJSON(text)
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestExtractBalancedJSON_NoObject(t *testing.T) {
	_, err := ExtractBalancedJSON("no json here")
	require.Error(t, err)
}

func TestValidateAction_ToolShape(t *testing.T) {
	reg := NewRegistry(RepeatMessageTool{})
	action, err := ValidateAction(`{"action":"tool","tool_name":"repeat_message","args":{"message":"hi"}}`, reg)
	require.NoError(t, err)
	assert.Equal(t, ActionTool, action.Action)
	assert.Equal(t, "repeat_message", action.ToolName)
	assert.Equal(t, "hi", action.Args["message"])
}

func TestValidateAction_FinishShape(t *testing.T) {
	action, err := ValidateAction(`{"action":"finish","answer":"done"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, ActionFinish, action.Action)
	assert.Equal(t, "done", action.Answer)
}

func TestValidateAction_RejectsExtraFields(t *testing.T) {
	_, err := ValidateAction(`{"action":"finish","answer":"done","extra":"nope"}`, nil)
	require.Error(t, err)
}

func TestValidateAction_RejectsUnknownAction(t *testing.T) {
	_, err := ValidateAction(`{"action":"loiter"}`, nil)
	require.Error(t, err)
}

func TestValidateAction_AliasRepairsBareToolName(t *testing.T) {
	reg := NewRegistry(SortArrayTool{})
	action, err := ValidateAction(`{"action":"sort_array","args":{"items":[3,1,2]}}`, reg)
	require.NoError(t, err)
	assert.Equal(t, ActionTool, action.Action)
	assert.Equal(t, "sort_array", action.ToolName)
}

func TestValidateAction_AliasPromotesNameField(t *testing.T) {
	action, err := ValidateAction(`{"action":"tool","name":"math_stats","args":{}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "math_stats", action.ToolName)
}

func TestNormalizeArgs_SortArrayAliases(t *testing.T) {
	out := NormalizeArgs("sort_array", map[string]any{"array": []any{1, 2}})
	assert.Equal(t, []any{1, 2}, out["items"])
}

func TestNormalizeArgs_DoesNotOverwriteCanonicalKey(t *testing.T) {
	out := NormalizeArgs("sort_array", map[string]any{"items": "keep", "array": "discard"})
	assert.Equal(t, "keep", out["items"])
}

func TestNormalizeArgs_WriteFileAliases(t *testing.T) {
	out := NormalizeArgs("write_file", map[string]any{"file_path": "fib.txt", "text": "0,1"})
	assert.Equal(t, "fib.txt", out["path"])
	assert.Equal(t, "0,1", out["content"])
}
