package orchestrator

import "fmt"

// MemoizationPolicyViolation is raised when the planner repeatedly ignores
// a required memoize call past the configured retry budget. It and
// RecursionLimitExceeded are the two orchestrator-specific errors that
// propagate out of Run; planner failures, invalid planner output and
// content-validation failures are absorbed into FinalAnswer and end the
// run through finalize.
type MemoizationPolicyViolation struct {
	Key     string
	Reason  string
	Retries int
}

func (e *MemoizationPolicyViolation) Error() string {
	return fmt.Sprintf("memoization policy violated for key %q after %d retries: %s", e.Key, e.Retries, e.Reason)
}

// RecursionLimitExceeded is raised when the graph exceeds its hard step
// ceiling without reaching finalize.
type RecursionLimitExceeded struct {
	Limit int
}

func (e *RecursionLimitExceeded) Error() string {
	return fmt.Sprintf("recursion limit of %d steps exceeded without finalizing", e.Limit)
}
