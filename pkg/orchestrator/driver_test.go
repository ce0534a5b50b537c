package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/agentgraph/pkg/checkpoint"
	"github.com/codeready-toolchain/agentgraph/pkg/config"
	"github.com/codeready-toolchain/agentgraph/pkg/memo"
	"github.com/codeready-toolchain/agentgraph/pkg/planner"
	"github.com/codeready-toolchain/agentgraph/pkg/toolregistry"
)

// testHarness wires a fresh memo/checkpoint store pair and tool registry
// for one end-to-end driver test.
type testHarness struct {
	Memo       memo.Store
	Checkpoint checkpoint.Store
	Registry   *toolregistry.Registry
	Dir        string
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	dir := t.TempDir()

	memoStore, err := memo.Open(filepath.Join(dir, "memo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = memoStore.Close() })

	ckptStore, err := checkpoint.Open(filepath.Join(dir, "checkpoints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ckptStore.Close() })

	return &testHarness{
		Memo:       memoStore,
		Checkpoint: ckptStore,
		Registry:   toolregistry.Build(memoStore),
		Dir:        dir,
	}
}

func (h *testHarness) newDriver(plnr planner.Planner, cfg config.OrchestratorConfig) *Driver {
	return NewDriver(h.Registry, h.Memo, h.Checkpoint, plnr, cfg, "")
}

func toolNames(records []ToolRecord) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Tool
	}
	return names
}

// TestS1_PlannerBlocks_HardTimeout_FailClosed: a planner that always
// sleeps past the wall-clock timeout must fail the run closed, quickly,
// without ever reaching a tool call.
func TestS1_PlannerBlocks_HardTimeout_FailClosed(t *testing.T) {
	h := newTestHarness(t)
	slow := planner.NewScripted(
		planner.ScriptedResponse{Text: `{"action":"finish","answer":"too slow"}`, Sleep: 200 * time.Millisecond},
		planner.ScriptedResponse{Text: `{"action":"finish","answer":"too slow"}`, Sleep: 200 * time.Millisecond},
	)
	cfg := config.Defaults()
	cfg.PlanCallTimeoutSeconds = 0.05
	cfg.MaxProviderTimeoutRetries = 1

	driver := h.newDriver(slow, cfg)

	started := time.Now()
	result, err := driver.Run(context.Background(), "Task 1: perform unknown operation now", "run-s1")
	elapsed := time.Since(started)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.Answer, "provider timeout retries")
	assert.Equal(t, 1, result.State.RetryCounts[RetryProviderTimeout])
	assert.Empty(t, result.ToolsUsed)
	assert.Less(t, elapsed, 400*time.Millisecond)
}

// TestS2_FibonacciWriteHappyPath: a write_file of a valid 100-term
// Fibonacci sequence, memoized, then auto-finished once the memoization
// requirement clears. The auto-lookup-before-write shortcut fires twice
// (full path + basename) before the write itself.
func TestS2_FibonacciWriteHappyPath(t *testing.T) {
	h := newTestHarness(t)
	path := filepath.Join(h.Dir, "fib.txt")
	content := fibonacciCSV(100)
	memoKey := "write_file:" + path

	plnr := planner.NewScripted(
		planner.ScriptedResponse{Text: fmt.Sprintf(
			`{"action":"tool","tool_name":"write_file","args":{"path":%q,"content":%q}}`, path, content)},
		planner.ScriptedResponse{Text: fmt.Sprintf(
			`{"action":"tool","tool_name":"memoize","args":{"key":%q,"value":{"path":%q,"content":%q},"source_tool":"write_file"}}`,
			memoKey, path, content)},
	)

	missionText := fmt.Sprintf("Task 1: Use write_file tool to write the fibonacci sequence until the 100th number to %s", path)
	driver := h.newDriver(plnr, config.Defaults())

	result, err := driver.Run(context.Background(), missionText, "run-s2")
	require.NoError(t, err)

	assert.Equal(t, []string{"retrieve_memo", "retrieve_memo", "write_file", "memoize"}, toolNames(result.ToolsUsed))
	assert.True(t, strings.HasPrefix(result.Answer, "All tasks completed."), "got answer %q", result.Answer)

	entries, err := h.Memo.ListEntries("run-s2", memo.DefaultNamespace)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, memoKey, entries[0].Key)
}

// TestS3_ContentValidationRetry: an invalid Fibonacci write is recorded
// as a failed (but completed) tool call, bumps the content-validation
// retry counter, and does not block the subsequent valid write from
// succeeding.
func TestS3_ContentValidationRetry(t *testing.T) {
	h := newTestHarness(t)
	path := filepath.Join(h.Dir, "fib.txt")
	badContent := "0, 1, 1, 2, 3, 5, 110, 114, 118"
	goodContent := fibonacciCSV(100)
	memoKey := "write_file:" + path

	plnr := planner.NewScripted(
		planner.ScriptedResponse{Text: fmt.Sprintf(
			`{"action":"tool","tool_name":"write_file","args":{"path":%q,"content":%q}}`, path, badContent)},
		planner.ScriptedResponse{Text: fmt.Sprintf(
			`{"action":"tool","tool_name":"write_file","args":{"path":%q,"content":%q}}`, path, goodContent)},
		planner.ScriptedResponse{Text: fmt.Sprintf(
			`{"action":"tool","tool_name":"memoize","args":{"key":%q,"value":{"path":%q,"content":%q},"source_tool":"write_file"}}`,
			memoKey, path, goodContent)},
	)

	missionText := fmt.Sprintf("Task 1: write the fibonacci sequence to %s", path)
	driver := h.newDriver(plnr, config.Defaults())

	result, err := driver.Run(context.Background(), missionText, "run-s3")
	require.NoError(t, err)

	assert.Equal(t, 1, result.State.RetryCounts[RetryContentValidation])
	assert.True(t, strings.HasPrefix(result.Answer, "All tasks completed."), "got answer %q", result.Answer)

	var sawFailedWrite bool
	for _, rec := range result.ToolsUsed {
		if rec.Tool != "write_file" {
			continue
		}
		if _, hasErr := rec.Result["error"]; hasErr {
			sawFailedWrite = true
			break
		}
	}
	assert.True(t, sawFailedWrite, "expected a write_file entry recording the content-validation failure")
}

// TestS4_DuplicateToolAutoFinish: once the only mission is satisfied by
// its first tool call, the run finishes automatically without ever
// re-invoking the tool, even though the planner is scripted to propose
// the same call again.
func TestS4_DuplicateToolAutoFinish(t *testing.T) {
	h := newTestHarness(t)
	plnr := planner.NewScripted(
		planner.ScriptedResponse{Text: `{"action":"tool","tool_name":"repeat_message","args":{"message":"ok"}}`},
		planner.ScriptedResponse{Text: `{"action":"tool","tool_name":"repeat_message","args":{"message":"ok"}}`},
	)

	driver := h.newDriver(plnr, config.Defaults())
	result, err := driver.Run(context.Background(), `Task 1: repeat "ok"`, "run-s4")
	require.NoError(t, err)

	assert.Equal(t, 1, result.State.ToolCallCounts["repeat_message"])
	assert.True(t, strings.HasPrefix(result.Answer, "All tasks completed."), "got answer %q", result.Answer)
}

// TestS5_CrossRunCacheReuse: a prior run's cached write_file input lets a
// fresh run satisfy its write mission without ever consulting the
// planner.
func TestS5_CrossRunCacheReuse(t *testing.T) {
	h := newTestHarness(t)
	path := filepath.Join(h.Dir, "fib.txt")
	content := fibonacciCSV(100)

	_, err := h.Memo.Put(memo.SharedRunID, "write_file_input:"+path,
		map[string]any{"path": path, "content": content}, memo.CacheNamespace, "write_file_cache", 0)
	require.NoError(t, err)

	plnr := planner.NewScripted(
		planner.ScriptedResponse{Text: `{"action":"finish","answer":"should not be reached"}`},
	)

	missionText := fmt.Sprintf("Task 1: write the fibonacci sequence to %s", path)
	driver := h.newDriver(plnr, config.Defaults())

	result, err := driver.Run(context.Background(), missionText, "run-s5")
	require.NoError(t, err)

	assert.Equal(t, 0, plnr.Calls())
	assert.Equal(t, []string{"write_file"}, toolNames(result.ToolsUsed))
	assert.Equal(t, 1, result.DerivedSnapshot.CacheReuseHits)
}

// TestS6_PolicyViolation: a planner that repeatedly ignores a required
// memoize call past the retry budget must surface
// MemoizationPolicyViolation out of Run.
func TestS6_PolicyViolation(t *testing.T) {
	h := newTestHarness(t)
	path := filepath.Join(h.Dir, "big.txt")

	var ints []string
	for i := 0; i < 200; i++ {
		ints = append(ints, fmt.Sprintf("%d", i))
	}
	heavyContent := strings.Join(ints, ",")

	plnr := planner.NewScripted(
		planner.ScriptedResponse{Text: fmt.Sprintf(
			`{"action":"tool","tool_name":"write_file","args":{"path":%q,"content":%q}}`, path, heavyContent)},
		planner.ScriptedResponse{Text: `{"action":"tool","tool_name":"repeat_message","args":{"message":"ignore policy"}}`},
		planner.ScriptedResponse{Text: `{"action":"tool","tool_name":"repeat_message","args":{"message":"ignore policy again"}}`},
		planner.ScriptedResponse{Text: `{"action":"tool","tool_name":"repeat_message","args":{"message":"ignore policy a third time"}}`},
	)

	cfg := config.Defaults()
	cfg.MaxPolicyRetries = 2
	driver := h.newDriver(plnr, cfg)

	missionText := fmt.Sprintf("Task 1: write data to %s\nTask 2: repeat \"done\"", path)
	_, err := driver.Run(context.Background(), missionText, "run-s6")

	require.Error(t, err)
	var violation *MemoizationPolicyViolation
	require.True(t, errors.As(err, &violation))
}
