package orchestrator

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/codeready-toolchain/agentgraph/pkg/toolregistry"
)

var (
	reQuoted        = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)
	reFibNth        = regexp.MustCompile(`(\d+)(?:st|nd|rd|th)\s+number`)
	reFibFirstN     = regexp.MustCompile(`first\s+(\d+)`)
	reFibNNumbers   = regexp.MustCompile(`(\d+)\s+(?:numbers|terms)`)
	reSortInts      = regexp.MustCompile(`-?\d+`)
	reFibExtractOut = regexp.MustCompile(`[\w./\\-]+\.\w+\b`)
)

// nextIncompleteMission returns the next mission not yet in CompletedTasks,
// assuming sequential completion, and whether one exists.
func nextIncompleteMission(state *RunState) (string, bool) {
	if len(state.CompletedTasks) >= len(state.Missions) {
		return "", false
	}
	return state.Missions[len(state.CompletedTasks)], true
}

// DeterministicFallback is consulted when the planner times out, or when
// already in planner-timeout mode. Returns nil when no deterministic
// action applies.
func DeterministicFallback(state *RunState) *toolregistry.Action {
	if state.PolicyFlags.MemoRequired && state.PolicyFlags.MemoRequiredKey != "" {
		value := any(map[string]any{"status": "memoized_by_fallback"})
		if state.PolicyFlags.LastToolResult != nil && len(state.PolicyFlags.LastToolResult) > 0 {
			value = state.PolicyFlags.LastToolResult
		}
		return &toolregistry.Action{
			Action:   toolregistry.ActionTool,
			ToolName: "memoize",
			Args: map[string]any{
				"key":         state.PolicyFlags.MemoRequiredKey,
				"value":       value,
				"run_id":      state.RunID,
				"source_tool": state.PolicyFlags.LastToolName,
			},
		}
	}

	if len(state.CompletedTasks) >= len(state.Missions) {
		return &toolregistry.Action{Action: toolregistry.ActionFinish, Answer: "All tasks completed."}
	}

	missionRaw, ok := nextIncompleteMission(state)
	if !ok {
		return nil
	}
	mission := strings.ToLower(missionRaw)

	repeatText, hasRepeatText := extractQuoted(missionRaw)

	if strings.Contains(mission, "repeat") && hasRepeatText {
		return &toolregistry.Action{
			Action: toolregistry.ActionTool, ToolName: "repeat_message",
			Args: map[string]any{"message": repeatText},
		}
	}

	if strings.Contains(mission, "sort") {
		if ints := extractInts(missionRaw); len(ints) > 0 {
			order := "asc"
			if strings.Contains(mission, "desc") {
				order = "desc"
			}
			items := make([]any, len(ints))
			for i, v := range ints {
				items[i] = v
			}
			return &toolregistry.Action{
				Action: toolregistry.ActionTool, ToolName: "sort_array",
				Args: map[string]any{"items": items, "order": order},
			}
		}
	}

	for _, op := range []string{"uppercase", "lowercase", "reverse"} {
		if strings.Contains(mission, op) && hasRepeatText {
			return &toolregistry.Action{
				Action: toolregistry.ActionTool, ToolName: "string_ops",
				Args: map[string]any{"text": repeatText, "operation": op},
			}
		}
	}

	if strings.Contains(mission, "fibonacci") && strings.Contains(mission, "write") {
		path := extractFilePath(missionRaw)
		if path == "" {
			path = "fib.txt"
		}
		n := extractFibonacciCount(mission)
		return &toolregistry.Action{
			Action: toolregistry.ActionTool, ToolName: "write_file",
			Args: map[string]any{"path": path, "content": fibonacciCSV(n)},
		}
	}

	return nil
}

func extractQuoted(text string) (string, bool) {
	m := reQuoted.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], m[2] != "" || strings.Contains(text, "''") || strings.Contains(text, `""`)
}

func extractInts(text string) []int {
	matches := reSortInts.FindAllString(text, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

func extractFilePath(text string) string {
	m := reFibExtractOut.FindString(text)
	return m
}

// extractFibonacciCount parses patterns like "Nth number", "first N terms",
// "N numbers/terms" from the (already lower-cased) mission text; defaults
// to 100, minimum 2.
func extractFibonacciCount(mission string) int {
	n := 100
	if m := reFibNth.FindStringSubmatch(mission); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
	} else if m := reFibFirstN.FindStringSubmatch(mission); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
	} else if m := reFibNNumbers.FindStringSubmatch(mission); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
	}
	if n < 2 {
		n = 2
	}
	return n
}

// fibonacciCSV generates the first n Fibonacci numbers, comma-separated,
// deterministically: seed [0,1], append sum of last two, truncate to n.
func fibonacciCSV(n int) string {
	seq := []*big.Int{big.NewInt(0), big.NewInt(1)}
	for len(seq) < n {
		seq = append(seq, new(big.Int).Add(seq[len(seq)-1], seq[len(seq)-2]))
	}
	seq = seq[:n]
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
