package toolregistry

import (
	"strings"

	"github.com/codeready-toolchain/agentgraph/pkg/memo"
)

// MemoizeTool writes a key/value pair into the run-scoped (or cross-run
// cache) memo store. The driver auto-injects run_id and step when absent.
type MemoizeTool struct {
	Store memo.Store
}

func (MemoizeTool) Name() string { return "memoize" }
func (MemoizeTool) Description() string {
	return "Memoize key/value in run-scoped store. Required args: key, value, run_id."
}

func (t MemoizeTool) Execute(args map[string]any) map[string]any {
	key := strings.TrimSpace(stringArgOrDefault(args, "key", ""))
	namespace := strings.TrimSpace(stringArgOrDefault(args, "namespace", memo.DefaultNamespace))
	if namespace == "" {
		namespace = memo.DefaultNamespace
	}
	runID := strings.TrimSpace(stringArgOrDefault(args, "run_id", ""))
	sourceTool := strings.TrimSpace(stringArgOrDefault(args, "source_tool", "memoize"))
	if sourceTool == "" {
		sourceTool = "memoize"
	}
	step := intArg(args, "step")
	value, hasValue := args["value"]

	if key == "" {
		return map[string]any{"error": "key is required"}
	}
	if !hasValue || value == nil {
		return map[string]any{"error": "value is required"}
	}
	if runID == "" {
		return map[string]any{"error": "run_id is required"}
	}

	result, err := t.Store.Put(runID, key, value, namespace, sourceTool, step)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{
		"result":     "memoized",
		"key":        result.Key,
		"namespace":  result.Namespace,
		"value_hash": result.ValueHash,
		"run_id":     result.RunID,
	}
}

// RetrieveMemoTool reads a previously memoized value back by key.
type RetrieveMemoTool struct {
	Store memo.Store
}

func (RetrieveMemoTool) Name() string { return "retrieve_memo" }
func (RetrieveMemoTool) Description() string {
	return "Retrieve memoized value by key. Required args: key, run_id."
}

func (t RetrieveMemoTool) Execute(args map[string]any) map[string]any {
	key := strings.TrimSpace(stringArgOrDefault(args, "key", ""))
	namespace := strings.TrimSpace(stringArgOrDefault(args, "namespace", memo.DefaultNamespace))
	if namespace == "" {
		namespace = memo.DefaultNamespace
	}
	runID := strings.TrimSpace(stringArgOrDefault(args, "run_id", ""))

	if key == "" {
		return map[string]any{"error": "key is required"}
	}
	if runID == "" {
		return map[string]any{"error": "run_id is required"}
	}

	lookup, err := t.Store.Get(runID, key, namespace)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	if !lookup.Found {
		return map[string]any{"found": false, "key": key, "namespace": namespace}
	}
	return map[string]any{
		"found":      true,
		"key":        key,
		"namespace":  namespace,
		"value":      lookup.Value,
		"value_hash": lookup.ValueHash,
		"run_id":     lookup.RunID,
	}
}

func stringArgOrDefault(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
