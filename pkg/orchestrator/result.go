package orchestrator

import (
	"github.com/codeready-toolchain/agentgraph/pkg/checkpoint"
	"github.com/codeready-toolchain/agentgraph/pkg/memo"
)

// RunResult is the programmatic surface Run returns: the terminal answer
// plus every audit trail an external caller may want, without requiring a
// second round of store queries.
type RunResult struct {
	Answer           string
	ToolsUsed        []ToolRecord
	MissionReport    []MissionReport
	RunID            string
	MemoEvents       []MemoEvent
	MemoStoreEntries []memo.Entry
	DerivedSnapshot  Snapshot
	Checkpoints      []checkpoint.Record
	State            *RunState
}

// buildRunResult assembles the RunResult from a terminal state plus the
// memo/checkpoint stores it was run against.
func buildRunResult(state *RunState, memoStore memo.Store, ckpt checkpoint.Store) (*RunResult, error) {
	entries, err := memoStore.ListEntries(state.RunID, memo.DefaultNamespace)
	if err != nil {
		return nil, err
	}
	records, err := ckpt.List(state.RunID)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Answer:           state.FinalAnswer,
		ToolsUsed:        state.ToolHistory,
		MissionReport:    state.MissionReports,
		RunID:            state.RunID,
		MemoEvents:       state.MemoEvents,
		MemoStoreEntries: entries,
		DerivedSnapshot:  BuildSnapshot(state, memoStore),
		Checkpoints:      records,
		State:            state,
	}, nil
}
