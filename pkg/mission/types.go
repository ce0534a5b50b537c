// Package mission implements the structured mission parser: it extracs
// an ordered plan of mission steps (with sub-tasks, tool suggestions, and
// sequential dependencies) from a user's free-text task list, falling
// back to a regex extractor when structured parsing yields nothing.
package mission

// Step is one node in the structured plan: a top-level mission ("1",
// "2", ...) or a sub-task of one ("1a", "1.1", ...).
type Step struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	ParentID       string   `json:"parent_id,omitempty"`
	SuggestedTools []string `json:"suggested_tools"`
	Dependencies   []string `json:"dependencies"`
	Status         string   `json:"status"`
}

// IsTopLevel reports whether this step has no parent.
func (s Step) IsTopLevel() bool {
	return s.ParentID == ""
}

// Plan is the parser's output.
type Plan struct {
	Steps         []Step   `json:"steps"`
	FlatMissions  []string `json:"flat_missions"`
	ParsingMethod string   `json:"parsing_method"`
}

const (
	// ParsingMethodStructured means the numbered-task or bullet-list
	// layers produced at least one step.
	ParsingMethodStructured = "structured"
	// ParsingMethodRegexFallback means both structured layers were empty
	// and the legacy regex extractor was used instead.
	ParsingMethodRegexFallback = "regex_fallback"
)
