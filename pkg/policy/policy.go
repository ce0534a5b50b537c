// Package policy implements the memoization policy: deterministic rules
// deciding when a tool result must be memoized before the run may
// continue, and stable key derivation so a later write_file can look its
// own prior input back up.
package policy

import (
	"fmt"
	"strings"

	"github.com/codeready-toolchain/agentgraph/pkg/memo"
)

// MemoizationPolicy holds the configurable retry ceiling; the predicates
// themselves are pure functions of (tool_name, args, result).
type MemoizationPolicy struct {
	// MaxPolicyRetries is how many times the planner may skip a required
	// memoize call before the driver raises MemoizationPolicyViolation.
	MaxPolicyRetries int
}

// New builds a MemoizationPolicy with the given retry ceiling.
func New(maxPolicyRetries int) MemoizationPolicy {
	return MemoizationPolicy{MaxPolicyRetries: maxPolicyRetries}
}

// RequiresMemoization returns true iff tool_name is "write_file" and the
// content looks "heavy": path mentions "fib", content is long or
// comma-dense, or the result message reports a successful write of
// substantial content.
func RequiresMemoization(toolName string, args, result map[string]any) bool {
	if toolName != "write_file" {
		return false
	}

	path := strings.ToLower(stringArg(args, "path"))
	content := stringArg(args, "content")

	if strings.Contains(path, "fib") {
		return true
	}
	if len(content) >= 400 {
		return true
	}
	if strings.Count(content, ",") > 20 {
		return true
	}

	if resultMsg, ok := result["result"]; ok {
		if strings.Contains(strings.ToLower(fmt.Sprint(resultMsg)), "wrote") {
			return len(content) > 0 && len(content) >= 200
		}
	}

	return false
}

// SuggestedMemoKey generates a stable key for memo write/read consistency.
// For write_file with a path, the key is "write_file:<path>", which the
// execute node's auto-lookup-before-write reads back (via retrieve_memo)
// from the same run's "run" namespace. Cross-run cache reuse uses separate
// "write_file_input:" keys.
func SuggestedMemoKey(toolName string, args, result map[string]any) string {
	if toolName == "write_file" {
		if path := strings.TrimSpace(stringArg(args, "path")); path != "" {
			return "write_file:" + path
		}
	}
	hash, err := memo.HashJSON(map[string]any{"args": args, "result": result})
	if err != nil || len(hash) < 12 {
		return toolName + ":unknown"
	}
	return toolName + ":" + hash[:12]
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}
