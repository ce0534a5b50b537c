package toolregistry

import "sort"

// SortArrayTool sorts a list of numbers or strings (not mixed) and returns
// the sorted list plus basic metadata.
type SortArrayTool struct{}

func (SortArrayTool) Name() string { return "sort_array" }
func (SortArrayTool) Description() string {
	return "Sorts a list of numbers or strings. Required args: items. Optional: order (asc|desc)."
}

func (SortArrayTool) Execute(args map[string]any) map[string]any {
	rawItems, ok := args["items"].([]any)
	if !ok {
		if args["items"] == nil {
			rawItems = []any{}
		} else {
			return map[string]any{"error": "items must be a list"}
		}
	}

	order, _ := args["order"].(string)
	if order == "" {
		order = "asc"
	}

	if len(rawItems) == 0 {
		return map[string]any{"sorted": []any{}, "count": 0, "order": order}
	}

	allNumeric := true
	allString := true
	for _, v := range rawItems {
		switch v.(type) {
		case float64, int:
		default:
			allNumeric = false
		}
		if _, ok := v.(string); !ok {
			allString = false
		}
	}
	if !allNumeric && !allString {
		return map[string]any{"error": "items must contain only numbers or strings"}
	}

	reverse := order == "desc"
	var sorted []any
	var err error
	if allString {
		sorted, err = sortStrings(rawItems, reverse)
	} else {
		sorted, err = sortNumbers(rawItems, reverse)
	}
	if err != nil {
		return map[string]any{"error": "sort_failed: " + err.Error()}
	}

	return map[string]any{
		"sorted":   sorted,
		"count":    len(sorted),
		"order":    order,
		"original": rawItems,
	}
}

func sortStrings(items []any, reverse bool) ([]any, error) {
	out := make([]string, len(items))
	for i, v := range items {
		out[i] = v.(string)
	}
	sort.Strings(out)
	if reverse {
		reverseStrings(out)
	}
	result := make([]any, len(out))
	for i, v := range out {
		result[i] = v
	}
	return result, nil
}

func sortNumbers(items []any, reverse bool) ([]any, error) {
	out := make([]float64, len(items))
	for i, v := range items {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		}
	}
	sort.Float64s(out)
	if reverse {
		reverseFloats(out)
	}
	result := make([]any, len(out))
	for i, v := range out {
		result[i] = v
	}
	return result, nil
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseFloats(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
