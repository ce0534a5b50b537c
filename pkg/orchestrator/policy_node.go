package orchestrator

import (
	"fmt"

	"github.com/codeready-toolchain/agentgraph/pkg/checkpoint"
	"github.com/codeready-toolchain/agentgraph/pkg/planner"
	"github.com/codeready-toolchain/agentgraph/pkg/policy"
)

const nodePolicy = "policy"

// RunPolicyNode implements the policy node: it looks at the last tool call
// and decides whether its result must be memoized before the run may
// continue.
func RunPolicyNode(state *RunState, ckpt checkpoint.Store) error {
	EnsureStateDefaults(state)

	last := state.PolicyFlags.LastToolName
	if last == "" || IsMemoHelper(last) {
		return ckpt.Save(state.RunID, state.Step, nodePolicy, state)
	}

	if policy.RequiresMemoization(last, state.PolicyFlags.LastToolArgs, state.PolicyFlags.LastToolResult) {
		key := policy.SuggestedMemoKey(last, state.PolicyFlags.LastToolArgs, state.PolicyFlags.LastToolResult)
		state.PolicyFlags.MemoRequired = true
		state.PolicyFlags.MemoRequiredKey = key
		state.PolicyFlags.MemoRequiredReason = fmt.Sprintf("heavy deterministic result from %s", last)
		state.Messages = append(state.Messages, planner.Message{
			Role: planner.RoleSystem,
			Content: fmt.Sprintf(
				"This result must be memoized before continuing. Call memoize with key=%q and run_id=%q.",
				key, state.RunID,
			),
		})
	}

	return ckpt.Save(state.RunID, state.Step, nodePolicy, state)
}
