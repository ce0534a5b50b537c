package toolregistry

import (
	"sort"
	"strings"
)

var stringOpsSupported = map[string]bool{
	"uppercase": true, "lowercase": true, "reverse": true, "length": true,
	"trim": true, "replace": true, "split": true, "count_words": true,
	"startswith": true, "endswith": true, "contains": true,
}

// StringOpsTool performs basic string manipulation operations.
type StringOpsTool struct{}

func (StringOpsTool) Name() string { return "string_ops" }
func (StringOpsTool) Description() string {
	return "Performs string manipulation operations. Supported operations: " + sortedOpsList(stringOpsSupported) + "."
}

func sortedOpsList(ops map[string]bool) string {
	names := make([]string, 0, len(ops))
	for k := range ops {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (StringOpsTool) Execute(args map[string]any) map[string]any {
	text, ok := args["text"].(string)
	if !ok && args["text"] != nil {
		return map[string]any{"error": "text must be a string"}
	}
	operation, _ := args["operation"].(string)

	if !stringOpsSupported[operation] {
		names := make([]string, 0, len(stringOpsSupported))
		for k := range stringOpsSupported {
			names = append(names, k)
		}
		sort.Strings(names)
		return map[string]any{
			"error":                "unknown operation '" + operation + "'",
			"supported_operations": names,
		}
	}

	switch operation {
	case "uppercase":
		return map[string]any{"result": strings.ToUpper(text)}
	case "lowercase":
		return map[string]any{"result": strings.ToLower(text)}
	case "reverse":
		return map[string]any{"result": reverseRunes(text)}
	case "length":
		return map[string]any{"result": len([]rune(text))}
	case "trim":
		return map[string]any{"result": strings.TrimSpace(text)}
	case "count_words":
		return map[string]any{"result": len(strings.Fields(text))}
	case "replace":
		old, oldOK := args["old"].(string)
		if !oldOK {
			old, oldOK = "", args["old"] == nil
		}
		newStr, newOK := args["new"].(string)
		if !newOK {
			newStr, newOK = "", args["new"] == nil
		}
		if !oldOK || !newOK {
			return map[string]any{"error": "'old' and 'new' must be strings for replace"}
		}
		return map[string]any{"result": strings.ReplaceAll(text, old, newStr)}
	case "split":
		delimiter, hasDelim := args["delimiter"].(string)
		if !hasDelim {
			delimiter = " "
		}
		parts := strings.Split(text, delimiter)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return map[string]any{"result": out}
	case "startswith":
		prefix, _ := args["prefix"].(string)
		return map[string]any{"result": strings.HasPrefix(text, prefix)}
	case "endswith":
		suffix, _ := args["suffix"].(string)
		return map[string]any{"result": strings.HasSuffix(text, suffix)}
	case "contains":
		substring, _ := args["substring"].(string)
		return map[string]any{"result": strings.Contains(text, substring)}
	default:
		return map[string]any{"error": "operation '" + operation + "' not implemented"}
	}
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
