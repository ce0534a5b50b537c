// Package orchestrator implements the plan/execute/policy/finalize state
// machine that drives a run: it coordinates a non-deterministic planner
// with the deterministic tool registry, enforcing progress, deduplication,
// memoization, and content-correctness guardrails until every mission
// completes or the run fails closed.
package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/agentgraph/pkg/mission"
	"github.com/codeready-toolchain/agentgraph/pkg/planner"
	"github.com/codeready-toolchain/agentgraph/pkg/toolregistry"
)

// ToolRecord is one entry in the run's tool-execution audit trail.
// Call is 1-based and dense.
type ToolRecord struct {
	Call   int
	Tool   string
	Args   map[string]any
	Result map[string]any
}

// MemoEvent records one memo-store interaction (memoize, retrieve_memo hit
// or miss, cache reuse, or write-file cache population).
type MemoEvent struct {
	Key        string
	Namespace  string
	SourceTool string
	Step       int
	ValueHash  string
	CreatedAt  string
}

// MissionReport is the per-mission rollup used in the final report.
type MissionReport struct {
	MissionID   int
	Mission     string
	UsedTools   []string
	ToolResults []map[string]any
	Result      string
}

// PolicyFlags mirrors the Python source's policy_flags mapping as a typed
// struct, including the last-tool-call scratch fields the policy node
// reads.
type PolicyFlags struct {
	MemoRequired       bool
	MemoRequiredKey    string
	MemoRequiredReason string
	MemoRetrieveHits   int
	MemoRetrieveMisses int
	CacheReuseHits     int
	CacheReuseMisses   int
	PlannerTimeoutMode bool

	LastToolName   string
	LastToolArgs   map[string]any
	LastToolResult map[string]any
}

// Retry counter keys, one per distinct failure mode the driver tracks.
const (
	RetryInvalidJSON       = "invalid_json"
	RetryMemoPolicy        = "memo_policy"
	RetryDuplicateTool     = "duplicate_tool"
	RetryProviderTimeout   = "provider_timeout"
	RetryContentValidation = "content_validation"
)

// RunState is the single mutable object threaded through every node.
type RunState struct {
	RunID   string
	Step    int
	Messages []planner.Message

	Missions           []string
	MissionReports     []MissionReport
	ActiveMissionIndex int
	CompletedTasks     []string

	ToolHistory        []ToolRecord
	SeenToolSignatures []string
	ToolCallCounts     map[string]int

	MemoEvents  []MemoEvent
	RetryCounts map[string]int
	PolicyFlags PolicyFlags

	StructuredPlan *mission.Plan
	PendingAction  *toolregistry.Action
	FinalAnswer    string
}

// NewRunState builds the initial state shape for a new run. An empty runID
// generates a fresh UUID, matching the Python source's str(uuid4()).
func NewRunState(systemPrompt, userInput, runID string) *RunState {
	if runID == "" {
		runID = uuid.NewString()
	}
	state := &RunState{
		RunID: runID,
		Step:  0,
		Messages: []planner.Message{
			{Role: planner.RoleSystem, Content: systemPrompt},
			{Role: planner.RoleUser, Content: userInput},
		},
		ActiveMissionIndex: -1,
	}
	EnsureStateDefaults(state)
	return state
}

// EnsureStateDefaults repairs nil slices/maps so node handlers can run
// safely against a state round-tripped through a checkpoint. Invoked at
// the top of every node to tolerate partially populated snapshots.
func EnsureStateDefaults(state *RunState) {
	if state.Messages == nil {
		state.Messages = []planner.Message{}
	}
	if state.Missions == nil {
		state.Missions = []string{}
	}
	if state.MissionReports == nil {
		state.MissionReports = []MissionReport{}
	}
	if state.CompletedTasks == nil {
		state.CompletedTasks = []string{}
	}
	if state.ToolHistory == nil {
		state.ToolHistory = []ToolRecord{}
	}
	if state.SeenToolSignatures == nil {
		state.SeenToolSignatures = []string{}
	}
	if state.ToolCallCounts == nil {
		state.ToolCallCounts = map[string]int{}
	}
	if state.MemoEvents == nil {
		state.MemoEvents = []MemoEvent{}
	}
	if state.RetryCounts == nil {
		state.RetryCounts = map[string]int{}
	}
	for _, key := range []string{RetryInvalidJSON, RetryMemoPolicy, RetryDuplicateTool, RetryProviderTimeout, RetryContentValidation} {
		if _, ok := state.RetryCounts[key]; !ok {
			state.RetryCounts[key] = 0
		}
	}
	if state.PolicyFlags.LastToolArgs == nil {
		state.PolicyFlags.LastToolArgs = map[string]any{}
	}
	if state.PolicyFlags.LastToolResult == nil {
		state.PolicyFlags.LastToolResult = map[string]any{}
	}
}

// UTCNowISO returns the current time as an ISO-8601 UTC timestamp.
func UTCNowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
