package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/agentgraph/pkg/checkpoint"
	"github.com/codeready-toolchain/agentgraph/pkg/config"
	"github.com/codeready-toolchain/agentgraph/pkg/memo"
	"github.com/codeready-toolchain/agentgraph/pkg/mission"
	"github.com/codeready-toolchain/agentgraph/pkg/planner"
	"github.com/codeready-toolchain/agentgraph/pkg/toolregistry"
)

// branch selects which node the driver loop visits after runPlanNode.
type branch int

const (
	branchPlanAgain branch = iota
	branchExecute
	branchFinalize
)

// Driver wires the planner, tool registry, memo/checkpoint stores, and
// retry budgets into the plan/execute/policy/finalize graph.
type Driver struct {
	Registry   *toolregistry.Registry
	Memo       memo.Store
	Checkpoint checkpoint.Store
	Planner    planner.Planner
	Config     config.OrchestratorConfig

	// PlanArtifactDir, if non-empty, is where the Shared Plan artifact is
	// written at finalize. Empty disables the artifact write.
	PlanArtifactDir string
}

// NewDriver builds a Driver, wrapping plnr in a hard wall-clock timeout
// per Config.PlanCallTimeoutSeconds.
func NewDriver(reg *toolregistry.Registry, memoStore memo.Store, ckpt checkpoint.Store, plnr planner.Planner, cfg config.OrchestratorConfig, planArtifactDir string) *Driver {
	timeout := time.Duration(cfg.PlanCallTimeoutSeconds * float64(time.Second))
	return &Driver{
		Registry:        reg,
		Memo:            memoStore,
		Checkpoint:      ckpt,
		Planner:         planner.NewTimeoutWrapper(plnr, timeout),
		Config:          cfg,
		PlanArtifactDir: planArtifactDir,
	}
}

// Run drives a single agent run to completion and returns the programmatic
// result surface. It always returns a terminal result with a
// non-empty Answer, except when the graph exceeds its recursion limit or a
// MemoizationPolicyViolation occurs, in which case err is non-nil and
// result is nil.
func (d *Driver) Run(ctx context.Context, userInput, runID string) (*RunResult, error) {
	state, err := d.run(ctx, userInput, runID)
	if err != nil {
		return nil, err
	}
	return buildRunResult(state, d.Memo, d.Checkpoint)
}

// run is the internal state-machine loop; it returns the raw terminal
// RunState so tests can inspect it directly without the store round-trips
// buildRunResult performs.
func (d *Driver) run(ctx context.Context, userInput, runID string) (*RunState, error) {
	systemPrompt := BuildSystemPrompt(d.Registry)
	state := NewRunState(systemPrompt, userInput, runID)

	parseTimeout := time.Duration(d.Config.MissionParseTimeoutSeconds * float64(time.Second))
	plan := mission.ParseMissions(userInput, parseTimeout)
	state.StructuredPlan = &plan
	state.Missions = append([]string{}, plan.FlatMissions...)

	if err := d.Checkpoint.Save(state.RunID, state.Step, "init", state); err != nil {
		return nil, fmt.Errorf("orchestrator: save init checkpoint: %w", err)
	}

	for {
		if state.Step > d.Config.MaxSteps {
			return nil, &RecursionLimitExceeded{Limit: d.Config.MaxSteps}
		}

		b, err := d.runPlanNode(ctx, state)
		if err != nil {
			return nil, err
		}

		switch b {
		case branchFinalize:
			if err := RunFinalizeNode(state, d.Checkpoint, d.PlanArtifactDir); err != nil {
				return nil, fmt.Errorf("orchestrator: finalize: %w", err)
			}
			return state, nil

		case branchExecute:
			if err := d.runExecuteNode(state); err != nil {
				return nil, err
			}
			if err := RunPolicyNode(state, d.Checkpoint); err != nil {
				return nil, fmt.Errorf("orchestrator: policy: %w", err)
			}

		case branchPlanAgain:
			// loop: runPlanNode already checkpointed this pass.
		}
	}
}

// runPlanNode implements the plan node's ten-step decision sequence.
func (d *Driver) runPlanNode(ctx context.Context, state *RunState) (branch, error) {
	EnsureStateDefaults(state)

	// Step 1: finish carried in from an earlier execute-node shortcut.
	if state.PendingAction != nil && state.PendingAction.Action == toolregistry.ActionFinish {
		return branchFinalize, nil
	}

	// Step 2.
	state.Step++

	// Step 3: cache-reuse shortcut.
	hit, err := d.tryCacheReuse(state)
	if err != nil {
		return branchPlanAgain, fmt.Errorf("orchestrator: cache reuse: %w", err)
	}
	if hit {
		return branchPlanAgain, d.Checkpoint.Save(state.RunID, state.Step, "plan_cache_reuse", state)
	}

	// Step 4: all missions complete, provided there is no outstanding
	// memoization requirement still waiting on a memoize call.
	if len(state.CompletedTasks) >= len(state.Missions) && !state.PolicyFlags.MemoRequired {
		state.PendingAction = &toolregistry.Action{
			Action: toolregistry.ActionFinish,
			Answer: autoSummary(state),
		}
		return branchExecute, d.Checkpoint.Save(state.RunID, state.Step, "plan", state)
	}

	// Step 5: planner-timeout mode.
	if state.PolicyFlags.PlannerTimeoutMode {
		if action := DeterministicFallback(state); action != nil {
			state.PendingAction = action
			return branchExecute, d.Checkpoint.Save(state.RunID, state.Step, "plan_timeout_fallback", state)
		}
	}

	// Step 6: progress hint.
	state.Messages = append(state.Messages, planner.Message{Role: planner.RoleSystem, Content: progressHint(state)})

	// Step 7: call the planner.
	text, genErr := d.Planner.Generate(ctx, state.Messages)
	if genErr != nil {
		if _, ok := genErr.(*planner.ProviderTimeout); ok {
			state.RetryCounts[RetryProviderTimeout]++
			if action := DeterministicFallback(state); action != nil {
				state.PolicyFlags.PlannerTimeoutMode = true
				state.Messages = append(state.Messages, planner.Message{
					Role:    planner.RoleSystem,
					Content: "The planning provider timed out; continuing with a deterministic fallback action.",
				})
				state.PendingAction = action
				return branchExecute, d.Checkpoint.Save(state.RunID, state.Step, "plan_provider_timeout", state)
			}
			if state.RetryCounts[RetryProviderTimeout] >= d.Config.MaxProviderTimeoutRetries {
				state.PendingAction = &toolregistry.Action{
					Action: toolregistry.ActionFinish,
					Answer: "Run failed: provider timeout retries exhausted with no deterministic fallback available.",
				}
				return branchExecute, d.Checkpoint.Save(state.RunID, state.Step, "plan_fail_provider_timeout", state)
			}
			state.Messages = append(state.Messages, planner.Message{
				Role:    planner.RoleSystem,
				Content: "The previous request timed out. Retry and return exactly one JSON object.",
			})
			state.PendingAction = nil
			return branchPlanAgain, d.Checkpoint.Save(state.RunID, state.Step, "plan_provider_timeout", state)
		}

		// Step 8: other planner error.
		if planner.IsUnrecoverable(genErr) {
			state.PendingAction = &toolregistry.Action{
				Action: toolregistry.ActionFinish,
				Answer: fmt.Sprintf("Run failed: unrecoverable provider error: %s", genErr),
			}
			return branchExecute, d.Checkpoint.Save(state.RunID, state.Step, "plan_fail_unrecoverable", state)
		}
		return d.recoverablePlanFailure(state, fmt.Sprintf("Planner call failed: %s. Retry and return exactly one JSON object.", genErr))
	}

	// Step 9: success path.
	state.Messages = append(state.Messages, planner.Message{Role: planner.RoleAssistant, Content: text})
	action, valErr := toolregistry.ValidateAction(text, d.Registry)
	if valErr != nil {
		return d.recoverablePlanFailure(state, fmt.Sprintf("Your last response was invalid: %s. Respond with exactly one JSON object, no prose.", valErr))
	}
	state.PolicyFlags.PlannerTimeoutMode = false
	state.RetryCounts[RetryInvalidJSON] = 0

	if action.Action == toolregistry.ActionFinish && len(state.CompletedTasks) < len(state.Missions) {
		next, _ := nextIncompleteMission(state)
		state.Messages = append(state.Messages, planner.Message{
			Role:    planner.RoleSystem,
			Content: fmt.Sprintf("Not all tasks are complete; do not finish yet. Next task: %s", next),
		})
		state.PendingAction = nil
		return branchPlanAgain, d.Checkpoint.Save(state.RunID, state.Step, "plan_finish_rejected", state)
	}
	if action.Action == toolregistry.ActionFinish && state.PolicyFlags.MemoRequired {
		state.Messages = append(state.Messages, planner.Message{
			Role: planner.RoleSystem,
			Content: fmt.Sprintf(
				"You must call memoize with key=%q and run_id=%q before finishing.",
				state.PolicyFlags.MemoRequiredKey, state.RunID,
			),
		})
		state.PendingAction = nil
		return branchPlanAgain, d.Checkpoint.Save(state.RunID, state.Step, "plan_finish_rejected", state)
	}

	if action.Action == toolregistry.ActionTool {
		action.Args = toolregistry.NormalizeArgs(action.ToolName, action.Args)
	}
	state.PendingAction = &action
	return branchExecute, d.Checkpoint.Save(state.RunID, state.Step, "plan", state)
}

// recoverablePlanFailure implements the invalid_json retry branch shared
// by step 8's recoverable-error path and step 9's schema-validation
// failure path, both drawing from the same retry budget.
func (d *Driver) recoverablePlanFailure(state *RunState, message string) (branch, error) {
	state.RetryCounts[RetryInvalidJSON]++
	if state.RetryCounts[RetryInvalidJSON] > d.Config.MaxInvalidPlanRetries {
		state.PendingAction = &toolregistry.Action{
			Action: toolregistry.ActionFinish,
			Answer: "Run failed: planner produced invalid output past the retry budget.",
		}
		return branchExecute, d.Checkpoint.Save(state.RunID, state.Step, "plan_fail_invalid_json", state)
	}
	state.Messages = append(state.Messages, planner.Message{Role: planner.RoleSystem, Content: message})
	state.PendingAction = nil
	return branchPlanAgain, d.Checkpoint.Save(state.RunID, state.Step, "plan_error", state)
}

// autoSummary builds the answer for an automatic finish once every
// mission is complete.
func autoSummary(state *RunState) string {
	var parts []string
	for _, r := range state.MissionReports {
		if r.Result != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", r.Mission, r.Result))
		}
	}
	if len(parts) == 0 {
		return "All tasks completed."
	}
	return "All tasks completed. " + strings.Join(parts, "; ")
}

// tryCacheReuse implements the plan node's step 3. It returns true when
// it directly executed a cached write_file and completed a mission.
func (d *Driver) tryCacheReuse(state *RunState) (bool, error) {
	missionText, ok := nextIncompleteMission(state)
	if !ok {
		return false, nil
	}
	lower := strings.ToLower(missionText)
	if !strings.Contains(lower, "write") {
		return false, nil
	}
	path := extractFilePath(missionText)
	if path == "" {
		return false, nil
	}

	candidates := []string{"write_file_input:" + path, "write_file_input:" + basename(path)}

	for _, key := range candidates {
		lookup, err := d.Memo.GetLatest(key, memo.CacheNamespace)
		if err != nil {
			return false, err
		}
		if !lookup.Found {
			state.PolicyFlags.CacheReuseMisses++
			continue
		}
		payload, ok := lookup.Value.(map[string]any)
		if !ok {
			state.PolicyFlags.CacheReuseMisses++
			continue
		}
		content, _ := payload["content"].(string)
		cachedPath, _ := payload["path"].(string)
		if content == "" {
			state.PolicyFlags.CacheReuseMisses++
			continue
		}
		if cachedPath == "" {
			cachedPath = path
		}

		args := map[string]any{"path": cachedPath, "content": content}
		result := d.Registry.Execute("write_file", args)

		if reason := ValidateMissionContent("write_file", args, result, missionText); reason != "" {
			state.PolicyFlags.CacheReuseMisses++
			continue
		}
		if _, hasErr := result["error"]; hasErr {
			state.PolicyFlags.CacheReuseMisses++
			continue
		}

		state.PolicyFlags.CacheReuseHits++
		state.ToolCallCounts["write_file"]++
		call := len(state.ToolHistory) + 1
		state.ToolHistory = append(state.ToolHistory, ToolRecord{Call: call, Tool: "write_file", Args: args, Result: result})
		state.MemoEvents = append(state.MemoEvents, MemoEvent{
			Key: key, Namespace: memo.CacheNamespace, SourceTool: "cache_reuse_hit",
			Step: state.Step, CreatedAt: UTCNowISO(),
		})
		idx, hasIdx := nextIncompleteMissionIndex(state)
		if hasIdx {
			RecordMissionEvent(state, "write_file", args, result, idx)
		}
		return true, nil
	}

	return false, nil
}

func basename(path string) string {
	idx := strings.LastIndexAny(path, "/\\")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// marshalForLog is a small helper used by TOOL_RESULT system messages.
func marshalForLog(v map[string]any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
