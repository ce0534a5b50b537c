package toolregistry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Action is the normalized shape of a planner response: either a tool call
// or a finish. Action is one of ActionTool / ActionFinish.
type Action struct {
	Action   string
	ToolName string
	Args     map[string]any
	Answer   string
}

const (
	ActionTool   = "tool"
	ActionFinish = "finish"
)

var (
	ErrNoBalancedJSON = errors.New("toolregistry: no balanced JSON object found in planner output")
	ErrInvalidJSON    = errors.New("toolregistry: invalid json")
	ErrUnknownAction  = errors.New("toolregistry: action must be 'tool' or 'finish'")
	ErrExtraFields    = errors.New("toolregistry: unexpected top-level field")
)

// ExtractBalancedJSON recovers the first balanced top-level JSON object
// from raw planner text, tracking string literals and escapes so braces
// inside strings don't confuse the scan. Used as a lenient recovery step
// before schema validation (spec: no streaming, no multi-object responses,
// but planners sometimes wrap the object in prose).
func ExtractBalancedJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoBalancedJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoBalancedJSON
}

// ValidateAction parses raw planner output (after balanced-JSON recovery)
// into an Action, applying alias repair before strict schema validation.
// registry supplies the set of known tool names for the "action equals a
// known tool name" alias rule.
func ValidateAction(modelOutput string, registry *Registry) (Action, error) {
	jsonText, err := ExtractBalancedJSON(modelOutput)
	if err != nil {
		return Action{}, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(jsonText), &data); err != nil {
		return Action{}, fmt.Errorf("%w: %s", ErrInvalidJSON, err)
	}

	repairAliases(data, registry)

	action, _ := data["action"].(string)
	action = strings.ToLower(strings.TrimSpace(action))

	switch action {
	case ActionTool:
		return validateToolAction(data)
	case ActionFinish:
		return validateFinishAction(data)
	default:
		return Action{}, ErrUnknownAction
	}
}

// repairAliases mutates data in place to tolerate common planner slips:
//   - if tool_name is absent and action equals a known tool name, treat the
//     whole object as a tool action naming that tool.
//   - if action is "tool" with no tool_name but a "name" field, promote
//     name -> tool_name.
func repairAliases(data map[string]any, registry *Registry) {
	action, _ := data["action"].(string)
	action = strings.ToLower(strings.TrimSpace(action))
	_, hasToolName := data["tool_name"]

	if !hasToolName && registry != nil && registry.Has(action) {
		data["tool_name"] = action
		data["action"] = ActionTool
		if _, hasArgs := data["args"]; !hasArgs {
			data["args"] = map[string]any{}
		}
		return
	}

	if action == ActionTool && !hasToolName {
		if name, ok := data["name"]; ok {
			data["tool_name"] = name
			delete(data, "name")
		}
	}
}

func validateToolAction(data map[string]any) (Action, error) {
	for key := range data {
		if key != "action" && key != "tool_name" && key != "args" {
			return Action{}, fmt.Errorf("%w %q for tool action", ErrExtraFields, key)
		}
	}
	toolName, _ := data["tool_name"].(string)
	if toolName == "" {
		return Action{}, errors.New("toolregistry: tool_name is required")
	}
	args, _ := data["args"].(map[string]any)
	if args == nil {
		args = map[string]any{}
	}
	return Action{Action: ActionTool, ToolName: toolName, Args: args}, nil
}

func validateFinishAction(data map[string]any) (Action, error) {
	for key := range data {
		if key != "action" && key != "answer" {
			return Action{}, fmt.Errorf("%w %q for finish action", ErrExtraFields, key)
		}
	}
	answer, _ := data["answer"].(string)
	if answer == "" {
		return Action{}, errors.New("toolregistry: answer is required")
	}
	return Action{Action: ActionFinish, Answer: answer}, nil
}

// aliasTable maps tool name -> list of (alias key, canonical key) pairs
// applied in order, first alias present wins.
var aliasTable = map[string][][2]string{
	"sort_array":     {{"array", "items"}, {"values", "items"}},
	"repeat_message": {{"text", "message"}},
	"string_ops":     {{"op", "operation"}, {"regex", "pattern"}, {"data", "numbers"}, {"values", "numbers"}},
	"text_analysis":  {{"op", "operation"}, {"regex", "pattern"}, {"data", "numbers"}, {"values", "numbers"}},
	"data_analysis":  {{"op", "operation"}, {"regex", "pattern"}, {"data", "numbers"}, {"values", "numbers"}},
	"regex_matcher":  {{"op", "operation"}, {"regex", "pattern"}, {"data", "numbers"}, {"values", "numbers"}},
	"write_file":     {{"file_path", "path"}, {"filename", "path"}, {"text", "content"}, {"data", "content"}},
	"memoize":        {{"data", "value"}},
}

// NormalizeArgs rewrites alias argument keys into their canonical names for
// the given tool, applied after validation and before execution. A canonical
// key already present in args is never overwritten by an alias.
func NormalizeArgs(toolName string, args map[string]any) map[string]any {
	aliases, ok := aliasTable[toolName]
	if !ok {
		return args
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	for _, pair := range aliases {
		aliasKey, canonicalKey := pair[0], pair[1]
		if _, hasCanonical := out[canonicalKey]; hasCanonical {
			continue
		}
		if v, hasAlias := out[aliasKey]; hasAlias {
			out[canonicalKey] = v
		}
	}
	return out
}
