package toolregistry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeatMessageTool(t *testing.T) {
	out := RepeatMessageTool{}.Execute(map[string]any{"message": "hello"})
	assert.Equal(t, "hello", out["echo"])
}

func TestSortArrayTool_Numbers(t *testing.T) {
	out := SortArrayTool{}.Execute(map[string]any{"items": []any{3.0, 1.0, 2.0}})
	assert.Equal(t, []any{1.0, 2.0, 3.0}, out["sorted"])
	assert.Equal(t, 3, out["count"])
}

func TestSortArrayTool_Descending(t *testing.T) {
	out := SortArrayTool{}.Execute(map[string]any{"items": []any{"b", "a", "c"}, "order": "desc"})
	assert.Equal(t, []any{"c", "b", "a"}, out["sorted"])
}

func TestSortArrayTool_RejectsMixedTypes(t *testing.T) {
	out := SortArrayTool{}.Execute(map[string]any{"items": []any{"a", 1.0}})
	assert.Contains(t, out, "error")
}

func TestStringOpsTool_Uppercase(t *testing.T) {
	out := StringOpsTool{}.Execute(map[string]any{"text": "abc", "operation": "uppercase"})
	assert.Equal(t, "ABC", out["result"])
}

func TestStringOpsTool_Replace(t *testing.T) {
	out := StringOpsTool{}.Execute(map[string]any{"text": "a-b-c", "operation": "replace", "old": "-", "new": "_"})
	assert.Equal(t, "a_b_c", out["result"])
}

func TestStringOpsTool_UnknownOperation(t *testing.T) {
	out := StringOpsTool{}.Execute(map[string]any{"text": "abc", "operation": "nope"})
	assert.Contains(t, out, "error")
}

func TestMathStatsTool_Add(t *testing.T) {
	out := MathStatsTool{}.Execute(map[string]any{"operation": "add", "a": 2.0, "b": 3.0})
	assert.Equal(t, 5.0, out["result"])
}

func TestMathStatsTool_DivideByZero(t *testing.T) {
	out := MathStatsTool{}.Execute(map[string]any{"operation": "divide", "a": 1.0, "b": 0.0})
	assert.Contains(t, out, "error")
}

func TestMathStatsTool_Mean(t *testing.T) {
	out := MathStatsTool{}.Execute(map[string]any{"operation": "mean", "numbers": []any{1.0, 2.0, 3.0}})
	assert.Equal(t, 2.0, out["result"])
}

func TestMathStatsTool_StdevRequiresTwo(t *testing.T) {
	out := MathStatsTool{}.Execute(map[string]any{"operation": "stdev", "numbers": []any{1.0}})
	assert.Contains(t, out, "error")
}

func TestWriteFileTool_WritesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fib.txt")
	out := WriteFileTool{}.Execute(map[string]any{"path": path, "content": "0,1,1,2"})
	require.Contains(t, out, "result")
	assert.Contains(t, out["result"], "Successfully wrote")
}

func TestWriteFileTool_RequiresPathAndContent(t *testing.T) {
	out := WriteFileTool{}.Execute(map[string]any{"content": "x"})
	assert.Contains(t, out, "error")
}

func TestJSONParserTool_Parse(t *testing.T) {
	out := JSONParserTool{}.Execute(map[string]any{"text": `{"a":1}`, "operation": "parse"})
	parsed, ok := out["parsed"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, parsed["a"])
}

func TestJSONParserTool_GetPath(t *testing.T) {
	out := JSONParserTool{}.Execute(map[string]any{
		"text":      `{"users":[{"name":"ada"}]}`,
		"operation": "get_path",
		"path":      "users.0.name",
	})
	assert.Equal(t, true, out["found"])
	assert.Equal(t, "ada", out["value"])
}

func TestJSONParserTool_InvalidJSON(t *testing.T) {
	out := JSONParserTool{}.Execute(map[string]any{"text": "{not json", "operation": "parse"})
	assert.Contains(t, out, "error")
}

func TestRegexMatcherTool_FindAll(t *testing.T) {
	out := RegexMatcherTool{}.Execute(map[string]any{"text": "a1 b2 c3", "pattern": `\d`, "operation": "find_all"})
	assert.Equal(t, []string{"1", "2", "3"}, out["matches"])
}

func TestRegexMatcherTool_Replace(t *testing.T) {
	out := RegexMatcherTool{}.Execute(map[string]any{"text": "a-b-c", "pattern": "-", "operation": "replace", "replacement": "_"})
	assert.Equal(t, "a_b_c", out["result"])
}

func TestRegexMatcherTool_InvalidPattern(t *testing.T) {
	out := RegexMatcherTool{}.Execute(map[string]any{"text": "x", "pattern": "(", "operation": "match"})
	assert.Contains(t, out, "error")
}

func TestTextAnalysisTool_WordCount(t *testing.T) {
	out := TextAnalysisTool{}.Execute(map[string]any{"text": "one two three", "operation": "word_count"})
	assert.Equal(t, 3, out["word_count"])
}

func TestTextAnalysisTool_FullReport(t *testing.T) {
	out := TextAnalysisTool{}.Execute(map[string]any{"text": "A simple test. Another sentence!", "operation": "full_report"})
	assert.Contains(t, out, "word_count")
	assert.Contains(t, out, "sentence_count")
	assert.Contains(t, out, "key_terms")
}

func TestDataAnalysisTool_SummaryStats(t *testing.T) {
	out := DataAnalysisTool{}.Execute(map[string]any{"numbers": []any{1.0, 2.0, 3.0, 4.0}, "operation": "summary_stats"})
	assert.Equal(t, 4, out["count"])
	assert.Equal(t, 2.5, out["mean"])
}

func TestDataAnalysisTool_CorrelationLengthMismatch(t *testing.T) {
	out := DataAnalysisTool{}.Execute(map[string]any{
		"numbers": []any{1.0, 2.0}, "numbers_b": []any{1.0}, "operation": "correlation",
	})
	assert.Contains(t, out, "error")
}

func TestTaskListParserTool_ParsesTasks(t *testing.T) {
	out := TaskListParserTool{}.Execute(map[string]any{"text": "Task 1: sort the array"})
	tasks, ok := out["tasks"].([]any)
	require.True(t, ok)
	require.Len(t, tasks, 1)
}
