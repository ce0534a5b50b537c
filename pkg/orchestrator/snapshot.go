package orchestrator

import "github.com/codeready-toolchain/agentgraph/pkg/memo"

// Snapshot is the derived, read-only summary computed after the graph
// terminates. MemoEntryCount and MemoKeys come from the memo store; every
// other field comes from local state.
type Snapshot struct {
	RunID          string
	Step           int
	ToolsUsedCount int
	ToolCallCounts map[string]int

	MemoEntryCount int
	MemoKeys       []string

	MissionCount int

	DuplicateToolRetries      int
	MemoPolicyRetries         int
	ProviderTimeoutRetries    int
	ContentValidationRetries int

	MemoRetrieveHits   int
	MemoRetrieveMisses int
	CacheReuseHits     int
	CacheReuseMisses   int
}

// BuildSnapshot computes the derived snapshot for state. It reads the
// memo store's run-scoped entries for MemoEntryCount/MemoKeys so the count
// always matches the store's own bookkeeping rather than local event
// counters; everything else comes from local state only.
func BuildSnapshot(state *RunState, store memo.Store) Snapshot {
	var memoEntryCount int
	var keys []string
	if store != nil {
		if entries, err := store.ListEntries(state.RunID, memo.DefaultNamespace); err == nil {
			memoEntryCount = len(entries)
			keys = make([]string, len(entries))
			for i, e := range entries {
				keys[i] = e.Key
			}
		}
	}

	return Snapshot{
		RunID:          state.RunID,
		Step:           state.Step,
		ToolsUsedCount: len(state.ToolHistory),
		ToolCallCounts: state.ToolCallCounts,

		MemoEntryCount: memoEntryCount,
		MemoKeys:       keys,

		MissionCount: len(state.Missions),

		DuplicateToolRetries:      state.RetryCounts[RetryDuplicateTool],
		MemoPolicyRetries:         state.RetryCounts[RetryMemoPolicy],
		ProviderTimeoutRetries:    state.RetryCounts[RetryProviderTimeout],
		ContentValidationRetries: state.RetryCounts[RetryContentValidation],

		MemoRetrieveHits:   state.PolicyFlags.MemoRetrieveHits,
		MemoRetrieveMisses: state.PolicyFlags.MemoRetrieveMisses,
		CacheReuseHits:     state.PolicyFlags.CacheReuseHits,
		CacheReuseMisses:   state.PolicyFlags.CacheReuseMisses,
	}
}
