package orchestrator

import (
	"log/slog"
	"path/filepath"

	"github.com/codeready-toolchain/agentgraph/pkg/checkpoint"
	"github.com/codeready-toolchain/agentgraph/pkg/toolregistry"
)

const nodeFinalize = "finalize"

// RunFinalizeNode implements the finalize node. planDir, if non-empty, is
// the directory the Shared Plan artifact is written to.
func RunFinalizeNode(state *RunState, ckpt checkpoint.Store, planDir string) error {
	EnsureStateDefaults(state)

	if state.PendingAction != nil && state.PendingAction.Action == toolregistry.ActionFinish {
		state.FinalAnswer = state.PendingAction.Answer
	}
	if state.FinalAnswer == "" {
		state.FinalAnswer = "Run completed."
	}

	if planDir != "" {
		path := filepath.Join(planDir, state.RunID+"_shared_plan.txt")
		if err := WriteSharedPlan(state, path); err != nil {
			slog.Warn("failed to write shared plan artifact", "run_id", state.RunID, "error", err)
		}
	}

	return ckpt.Save(state.RunID, state.Step, nodeFinalize, state)
}
