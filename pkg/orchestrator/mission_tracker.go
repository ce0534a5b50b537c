package orchestrator

import "strings"

// IsMemoHelper reports whether toolName is one of the two tools the
// driver treats specially (memoize, retrieve_memo).
func IsMemoHelper(toolName string) bool {
	return toolName == "memoize" || toolName == "retrieve_memo"
}

// nextIncompleteMissionIndex is nextIncompleteMission's index-returning
// counterpart, used wherever the tracker needs to mutate state by index.
func nextIncompleteMissionIndex(state *RunState) (int, bool) {
	if len(state.CompletedTasks) >= len(state.Missions) {
		return 0, false
	}
	return len(state.CompletedTasks), true
}

// RecordMissionEvent implements the mission tracker. It decides whether
// the given tool event completes a mission, and if so
// appends to CompletedTasks and binds the event to the corresponding
// MissionReport. missionIndexOverride selects a specific mission index
// instead of "the next incomplete one"; pass -1 to use the default.
func RecordMissionEvent(state *RunState, toolName string, args, result map[string]any, missionIndexOverride int) {
	idx := missionIndexOverride
	if idx < 0 {
		i, ok := nextIncompleteMissionIndex(state)
		if !ok {
			return
		}
		idx = i
	}
	if idx < 0 || idx >= len(state.Missions) {
		return
	}
	missionText := strings.ToLower(state.Missions[idx])

	shouldComplete := false
	switch {
	case IsMemoHelper(toolName):
		switch {
		case toolName == "retrieve_memo" && containsAny(missionText, "retrieve", "lookup", "memo"):
			shouldComplete = true
		case toolName == "memoize" && strings.Contains(missionText, "memo"):
			shouldComplete = true
		case state.PolicyFlags.MemoRequired:
			shouldComplete = true
		}
	default:
		if _, hasErr := result["error"]; !hasErr {
			shouldComplete = true
		}
	}
	if !shouldComplete {
		return
	}

	state.CompletedTasks = append(state.CompletedTasks, state.Missions[idx])
	report := missionReportAt(state, idx)
	report.UsedTools = append(report.UsedTools, toolName)
	report.ToolResults = append(report.ToolResults, result)
	if resultMsg, ok := result["result"]; ok {
		report.Result = toString(resultMsg)
	} else if len(report.Result) == 0 {
		report.Result = "completed"
	}
}

// missionReportAt returns the MissionReport bound to mission index idx,
// creating and appending one if it does not yet exist.
func missionReportAt(state *RunState, idx int) *MissionReport {
	for i := range state.MissionReports {
		if state.MissionReports[i].MissionID == idx {
			return &state.MissionReports[i]
		}
	}
	state.MissionReports = append(state.MissionReports, MissionReport{
		MissionID: idx,
		Mission:   state.Missions[idx],
	})
	return &state.MissionReports[len(state.MissionReports)-1]
}

func containsAny(text string, substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
