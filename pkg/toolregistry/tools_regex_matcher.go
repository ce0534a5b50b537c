package toolregistry

import (
	"regexp"
	"sort"
	"strings"
)

const regexMaxInputLength = 100 * 1024

var regexMatcherOperations = map[string]bool{
	"find_all": true, "find_first": true, "split": true, "replace": true,
	"match": true, "count_matches": true, "extract_groups": true,
}

// RegexMatcherTool applies regex find/replace/split/match/extract
// operations on text, bounded by a safety limit on input length.
type RegexMatcherTool struct{}

func (RegexMatcherTool) Name() string { return "regex_matcher" }
func (RegexMatcherTool) Description() string {
	return "Apply regex operations on text: find, replace, split, match, extract groups. " +
		"Required args: text (string), pattern (regex string), operation (string). " +
		"Operations: find_all, find_first, split, replace, match, count_matches, extract_groups. " +
		"Optional: replacement (for replace operation)."
}

func (RegexMatcherTool) Execute(args map[string]any) map[string]any {
	text, _ := args["text"].(string)
	pattern, _ := args["pattern"].(string)
	operation, _ := args["operation"].(string)
	operation = strings.ToLower(strings.TrimSpace(operation))

	if text == "" {
		return map[string]any{"error": "text is required"}
	}
	if pattern == "" {
		return map[string]any{"error": "pattern is required"}
	}
	if operation == "" {
		return map[string]any{"error": "operation is required"}
	}
	if !regexMatcherOperations[operation] {
		return map[string]any{"error": "unknown operation '" + operation + "'. Valid: " + sortedRegexOps()}
	}
	if len(text) > regexMaxInputLength {
		return map[string]any{"error": "input text exceeds maximum length of 102400 bytes"}
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return map[string]any{"error": "invalid regex pattern: " + err.Error()}
	}

	switch operation {
	case "find_all":
		matches := compiled.FindAllString(text, -1)
		if matches == nil {
			matches = []string{}
		}
		return map[string]any{"matches": matches, "count": len(matches)}
	case "find_first":
		loc := compiled.FindStringIndex(text)
		if loc == nil {
			return map[string]any{"match": nil, "found": false}
		}
		return map[string]any{"match": text[loc[0]:loc[1]], "start": loc[0], "end": loc[1], "found": true}
	case "split":
		parts := compiled.Split(text, -1)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return map[string]any{"parts": out, "count": len(out)}
	case "replace":
		replacement, _ := args["replacement"].(string)
		result := compiled.ReplaceAllString(text, replacement)
		return map[string]any{"result": result, "original": text}
	case "match":
		return map[string]any{"matches": compiled.MatchString(text)}
	case "count_matches":
		matches := compiled.FindAllString(text, -1)
		return map[string]any{"count": len(matches)}
	case "extract_groups":
		return regexExtractGroups(compiled, text)
	default:
		return map[string]any{"error": "operation '" + operation + "' not implemented"}
	}
}

func regexExtractGroups(compiled *regexp.Regexp, text string) map[string]any {
	all := compiled.FindAllStringSubmatch(text, -1)
	groups := make([]any, 0, len(all))
	for _, m := range all {
		if len(m) > 1 {
			rest := make([]any, len(m)-1)
			for i, g := range m[1:] {
				rest[i] = g
			}
			groups = append(groups, rest)
		} else {
			groups = append(groups, []any{m[0]})
		}
	}
	return map[string]any{"groups": groups, "count": len(groups)}
}

func sortedRegexOps() string {
	names := make([]string, 0, len(regexMatcherOperations))
	for k := range regexMatcherOperations {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
