package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeready-toolchain/agentgraph/pkg/toolregistry"
)

// BuildSystemPrompt assembles the fixed instruction string the planner
// receives at the start of a run: the allowed tool names, the two action
// shapes, and the memoization policy in plain language.
func BuildSystemPrompt(reg *toolregistry.Registry) string {
	names := append([]string{}, reg.Names()...)
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("You are a deterministic tool-using agent. Respond with exactly one JSON object per turn, no prose, no markup.\n\n")
	b.WriteString("Available tools:\n")
	for _, name := range names {
		if tool, ok := reg.Get(name); ok {
			fmt.Fprintf(&b, "- %s: %s\n", name, tool.Description())
		}
	}
	b.WriteString("\nResponse shapes:\n")
	b.WriteString(`- {"action": "tool", "tool_name": "<name>", "args": {...}}` + "\n")
	b.WriteString(`- {"action": "finish", "answer": "<final answer text>"}` + "\n")
	b.WriteString("\nMemoization policy: after a write_file call whose output is large, repetitive, or matches a cached-deterministic pattern, ")
	b.WriteString("you must call memoize with the key and run_id given in the system feedback message before taking any other action. ")
	b.WriteString("Always obey system feedback messages.\n")
	return b.String()
}

// progressHint renders the "Progress: completed k/N. Next task: …" system
// message appended before each planner call.
func progressHint(state *RunState) string {
	completed := len(state.CompletedTasks)
	total := len(state.Missions)
	if completed >= total {
		return fmt.Sprintf("Progress: completed %d/%d. All tasks complete; respond with a finish action.", completed, total)
	}
	next, _ := nextIncompleteMission(state)
	return fmt.Sprintf("Progress: completed %d/%d. Next task: %s", completed, total, next)
}
