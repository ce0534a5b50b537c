package toolregistry

import (
	"strings"
	"time"

	"github.com/codeready-toolchain/agentgraph/pkg/mission"
)

const taskListParserTimeout = 5 * time.Second

// TaskListParserTool exposes the structured mission parser as a callable
// tool, so a planner can ask for a task breakdown of arbitrary text
// mid-run.
type TaskListParserTool struct{}

func (TaskListParserTool) Name() string { return "task_list_parser" }
func (TaskListParserTool) Description() string {
	return "Parse raw task text into structured task list with sub-tasks and tool suggestions. " +
		"Required args: text (string)."
}

func (TaskListParserTool) Execute(args map[string]any) map[string]any {
	text, _ := args["text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]any{"error": "text is required"}
	}

	plan := mission.ParseMissions(text, taskListParserTimeout)

	tasks := make([]any, len(plan.Steps))
	for i, step := range plan.Steps {
		tasks[i] = stepToMap(step)
	}
	flat := make([]any, len(plan.FlatMissions))
	for i, m := range plan.FlatMissions {
		flat[i] = m
	}

	return map[string]any{
		"tasks":          tasks,
		"flat_missions":  flat,
		"parsing_method": plan.ParsingMethod,
	}
}

func stepToMap(step mission.Step) map[string]any {
	tools := make([]any, len(step.SuggestedTools))
	for i, t := range step.SuggestedTools {
		tools[i] = t
	}
	deps := make([]any, len(step.Dependencies))
	for i, d := range step.Dependencies {
		deps[i] = d
	}
	return map[string]any{
		"id":              step.ID,
		"description":     step.Description,
		"parent_id":       step.ParentID,
		"suggested_tools": tools,
		"dependencies":    deps,
		"status":          step.Status,
	}
}
