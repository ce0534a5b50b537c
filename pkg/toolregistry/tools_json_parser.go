package toolregistry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var jsonParserOperations = map[string]bool{
	"parse": true, "validate": true, "extract_keys": true, "flatten": true,
	"get_path": true, "pretty_print": true, "count_elements": true,
}

// JSONParserTool parses, validates, flattens, and extracts data from JSON
// strings.
type JSONParserTool struct{}

func (JSONParserTool) Name() string { return "json_parser" }
func (JSONParserTool) Description() string {
	return "Parse, validate, flatten, and extract data from JSON strings. " +
		"Required args: text (JSON string), operation (string). " +
		"Operations: parse, validate, extract_keys, flatten, get_path, pretty_print, count_elements. " +
		"Optional: path (for get_path, dot-notation e.g. 'users.0.name'), schema (for validate)."
}

func (JSONParserTool) Execute(args map[string]any) map[string]any {
	text, hasText := args["text"]
	operation, _ := args["operation"].(string)
	operation = strings.ToLower(strings.TrimSpace(operation))

	if !hasText || text == nil {
		return map[string]any{"error": "text is required"}
	}
	if operation == "" {
		return map[string]any{"error": "operation is required"}
	}
	if !jsonParserOperations[operation] {
		return map[string]any{"error": "unknown operation '" + operation + "'. Valid: " + sortedJSONOps()}
	}

	textStr := fmt.Sprintf("%v", text)
	var parsed any
	if err := json.Unmarshal([]byte(textStr), &parsed); err != nil {
		if operation == "validate" {
			return map[string]any{"valid": false, "error": err.Error()}
		}
		return map[string]any{"error": "invalid JSON: " + err.Error()}
	}

	switch operation {
	case "parse":
		return map[string]any{"parsed": parsed}
	case "validate":
		return jsonValidate(parsed, args["schema"])
	case "extract_keys":
		return jsonExtractKeys(parsed)
	case "flatten":
		flat := map[string]any{}
		jsonFlattenInto(parsed, "", flat)
		return map[string]any{"flattened": flat}
	case "get_path":
		path, _ := args["path"].(string)
		return jsonGetPath(parsed, path)
	case "pretty_print":
		pretty, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return map[string]any{"error": err.Error()}
		}
		return map[string]any{"pretty": string(pretty)}
	case "count_elements":
		return jsonCountElements(parsed)
	default:
		return map[string]any{"error": "operation '" + operation + "' not implemented"}
	}
}

func sortedJSONOps() string {
	names := make([]string, 0, len(jsonParserOperations))
	for k := range jsonParserOperations {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func jsonValidate(parsed any, schema any) map[string]any {
	if schema == nil {
		return map[string]any{"valid": true, "type": jsonTypeName(parsed)}
	}
	schemaMap, isMap := schema.(map[string]any)
	if !isMap {
		return map[string]any{"valid": true, "type": jsonTypeName(parsed)}
	}
	parsedMap, ok := parsed.(map[string]any)
	if !ok {
		return map[string]any{"valid": false, "error": "expected object, got " + jsonTypeName(parsed)}
	}
	var missing []string
	for k := range schemaMap {
		if _, ok := parsedMap[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return map[string]any{"valid": false, "error": fmt.Sprintf("missing keys: %v", missing)}
	}
	keys := make([]string, 0, len(parsedMap))
	for k := range parsedMap {
		keys = append(keys, k)
	}
	return map[string]any{"valid": true, "type": "object", "keys": keys}
}

func jsonExtractKeys(parsed any) map[string]any {
	switch v := parsed.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		return map[string]any{"keys": keys, "count": len(keys)}
	case []any:
		var allKeys []string
		seen := map[string]bool{}
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				for k := range m {
					if !seen[k] {
						seen[k] = true
						allKeys = append(allKeys, k)
					}
				}
			}
		}
		if allKeys == nil {
			allKeys = []string{}
		}
		return map[string]any{"keys": allKeys, "count": len(allKeys)}
	default:
		return map[string]any{"keys": []string{}, "count": 0}
	}
}

func jsonFlattenInto(obj any, prefix string, flat map[string]any) {
	switch v := obj.(type) {
	case map[string]any:
		for k, val := range v {
			newKey := k
			if prefix != "" {
				newKey = prefix + "." + k
			}
			jsonFlattenInto(val, newKey, flat)
		}
	case []any:
		for i, val := range v {
			newKey := strconv.Itoa(i)
			if prefix != "" {
				newKey = prefix + "." + newKey
			}
			jsonFlattenInto(val, newKey, flat)
		}
	default:
		flat[prefix] = v
	}
}

func jsonGetPath(parsed any, path string) map[string]any {
	if path == "" {
		return map[string]any{"error": "path is required for get_path operation"}
	}
	parts := strings.Split(path, ".")
	current := parsed
	for _, part := range parts {
		switch c := current.(type) {
		case map[string]any:
			v, ok := c[part]
			if !ok {
				return map[string]any{"error": fmt.Sprintf("key '%s' not found at path '%s'", part, path), "found": false}
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil {
				return map[string]any{"error": fmt.Sprintf("invalid index '%s' for list at path '%s'", part, path), "found": false}
			}
			if idx < 0 || idx >= len(c) {
				return map[string]any{"error": fmt.Sprintf("index %d out of range at path '%s'", idx, path), "found": false}
			}
			current = c[idx]
		default:
			return map[string]any{"error": fmt.Sprintf("cannot traverse into %s at '%s'", jsonTypeName(current), part), "found": false}
		}
	}
	return map[string]any{"value": current, "found": true, "path": path}
}

func jsonCountElements(parsed any) map[string]any {
	switch v := parsed.(type) {
	case map[string]any:
		return map[string]any{"count": len(v), "type": "object"}
	case []any:
		return map[string]any{"count": len(v), "type": "array"}
	default:
		return map[string]any{"count": 1, "type": jsonTypeName(parsed)}
	}
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case float64:
		return "float"
	case string:
		return "str"
	case map[string]any:
		return "dict"
	case []any:
		return "list"
	default:
		return "unknown"
	}
}
