package orchestrator

import (
	"fmt"
	"os"
	"strings"

	"github.com/codeready-toolchain/agentgraph/pkg/mission"
)

const sharedPlanSeparator = "────────────────────────────────────────────────────────────"

// FormatSharedPlan renders a human-readable summary of the structured
// plan and the flat mission list, with per-task status derived from
// CompletedTasks.
func FormatSharedPlan(state *RunState) string {
	var sb strings.Builder
	sb.WriteString(sharedPlanSeparator + "\n")
	fmt.Fprintf(&sb, "SHARED PLAN — run %s\n", state.RunID)
	sb.WriteString(sharedPlanSeparator + "\n\n")

	completed := make(map[string]bool, len(state.CompletedTasks))
	for _, t := range state.CompletedTasks {
		completed[t] = true
	}

	if state.StructuredPlan != nil {
		sb.WriteString("# Structured Plan\n\n")
		for _, step := range state.StructuredPlan.Steps {
			if step.IsTopLevel() {
				writeStep(&sb, step, state.StructuredPlan.Steps, completed, 0)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("# Flat Missions\n\n")
	for i, m := range state.Missions {
		status := "[ ] PENDING"
		if completed[m] {
			status = "[x] IMPLEMENTED"
		}
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, status, m)
	}

	fmt.Fprintf(&sb, "\nCompleted: %d/%d\n", len(state.CompletedTasks), len(state.Missions))
	return sb.String()
}

func writeStep(sb *strings.Builder, step mission.Step, all []mission.Step, completed map[string]bool, depth int) {
	indent := strings.Repeat("  ", depth)
	status := "[ ] PENDING"
	if completed[step.Description] || completed["Task "+step.ID+": "+step.Description] {
		status = "[x] IMPLEMENTED"
	}
	fmt.Fprintf(sb, "%s- %s %s\n", indent, status, step.Description)
	if len(step.SuggestedTools) > 0 {
		fmt.Fprintf(sb, "%s  tools: %s\n", indent, strings.Join(step.SuggestedTools, ", "))
	}
	if len(step.Dependencies) > 0 {
		fmt.Fprintf(sb, "%s  depends on: %s\n", indent, strings.Join(step.Dependencies, ", "))
	}
	for _, child := range all {
		if child.ParentID == step.ID {
			writeStep(sb, child, all, completed, depth+1)
		}
	}
}

// WriteSharedPlan writes the Shared Plan artifact to path. Failures are
// logged by the caller and are never fatal to the run.
func WriteSharedPlan(state *RunState, path string) error {
	return os.WriteFile(path, []byte(FormatSharedPlan(state)), 0o644)
}
