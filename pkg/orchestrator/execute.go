package orchestrator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/codeready-toolchain/agentgraph/pkg/memo"
	"github.com/codeready-toolchain/agentgraph/pkg/planner"
	"github.com/codeready-toolchain/agentgraph/pkg/toolregistry"
)

// runExecuteNode implements the execute node. It mutates state in place
// and returns only on unexpected failure (MemoizationPolicyViolation or a
// store error).
func (d *Driver) runExecuteNode(state *RunState) error {
	EnsureStateDefaults(state)
	action := state.PendingAction

	if action == nil {
		return d.Checkpoint.Save(state.RunID, state.Step, "execute", state)
	}

	if action.Action == toolregistry.ActionFinish {
		state.FinalAnswer = action.Answer
		return d.Checkpoint.Save(state.RunID, state.Step, "execute", state)
	}

	toolName := action.ToolName
	args := action.Args
	if args == nil {
		args = map[string]any{}
	}

	// Auto-lookup before write.
	if toolName == "write_file" {
		if done, err := d.tryAutoLookup(state, args); err != nil {
			return err
		} else if done {
			return nil
		}
	}

	// Memo-policy gate.
	if state.PolicyFlags.MemoRequired && toolName != "memoize" {
		state.RetryCounts[RetryMemoPolicy]++
		if state.RetryCounts[RetryMemoPolicy] > d.Config.MaxPolicyRetries {
			return &MemoizationPolicyViolation{
				Key:     state.PolicyFlags.MemoRequiredKey,
				Reason:  state.PolicyFlags.MemoRequiredReason,
				Retries: state.RetryCounts[RetryMemoPolicy],
			}
		}
		state.Messages = append(state.Messages, planner.Message{
			Role: planner.RoleSystem,
			Content: fmt.Sprintf(
				"You must call memoize with key=%q and run_id=%q before taking any other action.",
				state.PolicyFlags.MemoRequiredKey, state.RunID,
			),
		})
		state.PendingAction = nil
		return d.Checkpoint.Save(state.RunID, state.Step, "execute_policy_retry", state)
	}

	// Unknown tool.
	if !d.Registry.Has(toolName) {
		names := strings.Join(d.Registry.Names(), ", ")
		state.Messages = append(state.Messages, planner.Message{
			Role:    planner.RoleSystem,
			Content: fmt.Sprintf("Unknown tool %q. Valid tools are: %s", toolName, names),
		})
		state.PendingAction = nil
		return d.Checkpoint.Save(state.RunID, state.Step, "execute_unknown_tool", state)
	}

	// Memo helper auto-injection.
	if toolName == "memoize" || toolName == "retrieve_memo" {
		if _, ok := args["run_id"]; !ok {
			args["run_id"] = state.RunID
		}
		if toolName == "memoize" {
			if _, ok := args["step"]; !ok {
				args["step"] = state.Step
			}
		}
	}

	// Duplicate guard.
	canonical, err := memo.CanonicalJSON(args)
	if err != nil {
		return fmt.Errorf("orchestrator: canonicalize args for %s: %w", toolName, err)
	}
	signature := toolName + ":" + string(canonical)
	if seenSignature(state, signature) {
		state.RetryCounts[RetryDuplicateTool]++
		if len(state.CompletedTasks) >= len(state.Missions) {
			state.PendingAction = &toolregistry.Action{Action: toolregistry.ActionFinish, Answer: autoSummary(state)}
		} else {
			next, _ := nextIncompleteMission(state)
			state.Messages = append(state.Messages, planner.Message{
				Role:    planner.RoleSystem,
				Content: fmt.Sprintf("Do not repeat that exact call. Next task: %s", next),
			})
			state.PendingAction = nil
		}
		return d.Checkpoint.Save(state.RunID, state.Step, "execute_duplicate_tool", state)
	}
	state.SeenToolSignatures = append(state.SeenToolSignatures, signature)

	// Execute.
	result := d.Registry.Execute(toolName, args)

	if toolName == "retrieve_memo" {
		if found, ok := result["found"].(bool); ok {
			source := "retrieve_memo_miss"
			if found {
				source = "retrieve_memo_hit"
				state.PolicyFlags.MemoRetrieveHits++
			} else {
				state.PolicyFlags.MemoRetrieveMisses++
			}
			key, _ := args["key"].(string)
			state.MemoEvents = append(state.MemoEvents, MemoEvent{
				Key: key, Namespace: memo.DefaultNamespace, SourceTool: source,
				Step: state.Step, CreatedAt: UTCNowISO(),
			})
		}
	}

	missionText, _ := nextIncompleteMission(state)
	if reason := ValidateMissionContent(toolName, args, result, missionText); reason != "" {
		result = map[string]any{"error": "content_validation_failed", "details": reason}
		state.RetryCounts[RetryContentValidation]++

		// A failed content validation is still a completed (but failed)
		// tool call and belongs in the audit trail, same as any other
		// tool-internal error; it just never completes a mission
		// (RecordMissionEvent no-ops on a result carrying "error") and
		// must not seed the memoization policy off a bad result.
		call := len(state.ToolHistory) + 1
		state.ToolHistory = append(state.ToolHistory, ToolRecord{Call: call, Tool: toolName, Args: args, Result: result})
		state.ToolCallCounts[toolName]++
		RecordMissionEvent(state, toolName, args, result, -1)
		state.Messages = append(state.Messages, planner.Message{
			Role:    planner.RoleSystem,
			Content: fmt.Sprintf("TOOL_RESULT #%d (%s): %s", call, toolName, marshalForLog(result)),
		})

		if state.RetryCounts[RetryContentValidation] > d.Config.MaxContentValidationRetries {
			state.PendingAction = &toolregistry.Action{
				Action: toolregistry.ActionFinish,
				Answer: "Run failed: repeated content validation failures.",
			}
		} else {
			state.PendingAction = nil
		}
		state.PolicyFlags.LastToolName = ""
		state.PolicyFlags.LastToolArgs = map[string]any{}
		state.PolicyFlags.LastToolResult = map[string]any{}
		return d.Checkpoint.Save(state.RunID, state.Step, "execute_content_validation", state)
	}

	// Recording.
	call := len(state.ToolHistory) + 1
	state.ToolHistory = append(state.ToolHistory, ToolRecord{Call: call, Tool: toolName, Args: args, Result: result})
	state.ToolCallCounts[toolName]++
	RecordMissionEvent(state, toolName, args, result, -1)
	state.Messages = append(state.Messages, planner.Message{
		Role:    planner.RoleSystem,
		Content: fmt.Sprintf("TOOL_RESULT #%d (%s): %s", call, toolName, marshalForLog(result)),
	})
	state.Messages = append(state.Messages, planner.Message{Role: planner.RoleSystem, Content: progressHint(state)})

	// Write-cache storage.
	if toolName == "write_file" {
		if _, hasErr := result["error"]; !hasErr {
			if path, ok := args["path"].(string); ok && path != "" {
				content, _ := args["content"].(string)
				payload := map[string]any{"path": path, "content": content}
				for _, key := range cacheKeysFor(path) {
					if _, putErr := d.Memo.Put(memo.SharedRunID, key, payload, memo.CacheNamespace, "write_file_cache", state.Step); putErr == nil {
						state.MemoEvents = append(state.MemoEvents, MemoEvent{
							Key: key, Namespace: memo.CacheNamespace, SourceTool: "write_file_cache",
							Step: state.Step, CreatedAt: UTCNowISO(),
						})
					} else {
						slog.Warn("failed to store write_file cache entry", "run_id", state.RunID, "key", key, "error", putErr)
					}
				}
			}
		}
	}

	// Memo recording.
	if toolName == "memoize" {
		if hash, ok := result["value_hash"].(string); ok && hash != "" {
			key, _ := result["key"].(string)
			state.MemoEvents = append(state.MemoEvents, MemoEvent{
				Key: key, Namespace: memo.DefaultNamespace, SourceTool: "memoize",
				Step: state.Step, ValueHash: hash, CreatedAt: UTCNowISO(),
			})
			state.PolicyFlags.MemoRequired = false
			state.PolicyFlags.MemoRequiredKey = ""
			state.PolicyFlags.MemoRequiredReason = ""
			state.RetryCounts[RetryMemoPolicy] = 0
		}
	}

	state.PolicyFlags.LastToolName = toolName
	state.PolicyFlags.LastToolArgs = args
	state.PolicyFlags.LastToolResult = result
	state.PendingAction = nil
	return d.Checkpoint.Save(state.RunID, state.Step, "execute", state)
}

func seenSignature(state *RunState, signature string) bool {
	for _, s := range state.SeenToolSignatures {
		if s == signature {
			return true
		}
	}
	return false
}

// cacheKeysFor returns the two write_file_input cache keys for path: the
// full path and its basename. Both are always computed and addressed
// independently, even when path has no directory component and the two
// keys coincide, so every successful write_file stores exactly two
// write_file_cache entries.
func cacheKeysFor(path string) []string {
	return []string{"write_file_input:" + path, "write_file_input:" + basename(path)}
}

// tryAutoLookup implements the execute node's auto-lookup-before-write
// shortcut. It returns done=true only on a lookup hit, after it has
// completed the mission and saved the execute_lookup_hit_skip checkpoint.
func (d *Driver) tryAutoLookup(state *RunState, args map[string]any) (bool, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return false, nil
	}
	candidates := []string{"write_file:" + path, "write_file:" + basename(path)}

	// "Not already tried during this run" is evaluated against the history
	// as of entry to this node, not against entries this same loop has just
	// appended: when full-path and basename coincide, both candidates are
	// still looked up independently.
	alreadyTried := map[string]bool{}
	for _, rec := range state.ToolHistory {
		if rec.Tool != "retrieve_memo" {
			continue
		}
		if k, _ := rec.Args["key"].(string); k != "" {
			alreadyTried[k] = true
		}
	}

	for _, key := range candidates {
		if alreadyTried[key] {
			continue
		}

		lookupArgs := map[string]any{"key": key, "run_id": state.RunID}
		result := d.Registry.Execute("retrieve_memo", lookupArgs)

		call := len(state.ToolHistory) + 1
		state.ToolHistory = append(state.ToolHistory, ToolRecord{Call: call, Tool: "retrieve_memo", Args: lookupArgs, Result: result})
		state.ToolCallCounts["retrieve_memo"]++

		found, _ := result["found"].(bool)
		source := "retrieve_memo_miss"
		if found {
			source = "retrieve_memo_hit"
			state.PolicyFlags.MemoRetrieveHits++
		} else {
			state.PolicyFlags.MemoRetrieveMisses++
		}
		state.MemoEvents = append(state.MemoEvents, MemoEvent{
			Key: key, Namespace: memo.DefaultNamespace, SourceTool: source,
			Step: state.Step, CreatedAt: UTCNowISO(),
		})

		if !found {
			continue
		}

		idx, hasIdx := nextIncompleteMissionIndex(state)
		if hasIdx {
			state.CompletedTasks = append(state.CompletedTasks, state.Missions[idx])
			report := missionReportAt(state, idx)
			report.UsedTools = append(report.UsedTools, "retrieve_memo")
			report.ToolResults = append(report.ToolResults, result)
			report.Result = "resolved from memo"
		}
		state.Messages = append(state.Messages, planner.Message{
			Role:    planner.RoleSystem,
			Content: "That file content was already memoized; continue with the next task.",
		})
		state.PendingAction = nil
		return true, d.Checkpoint.Save(state.RunID, state.Step, "execute_lookup_hit_skip", state)
	}

	return false, nil
}

