package mission

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// toolKeywordMap is the substring→suggested-tools heuristic, applied in
// this fixed order so suggestions are deterministic and order-preserving.
var toolKeywordMap = []struct {
	keyword string
	tools   []string
}{
	{"sort", []string{"sort_array"}},
	{"order", []string{"sort_array"}},
	{"ascending", []string{"sort_array"}},
	{"descending", []string{"sort_array"}},
	{"repeat", []string{"repeat_message"}},
	{"echo", []string{"repeat_message"}},
	{"uppercase", []string{"string_ops"}},
	{"lowercase", []string{"string_ops"}},
	{"reverse", []string{"string_ops"}},
	{"trim", []string{"string_ops"}},
	{"replace", []string{"string_ops"}},
	{"split", []string{"string_ops"}},
	{"write", []string{"write_file"}},
	{"write_file", []string{"write_file"}},
	{"save", []string{"write_file"}},
	{"fibonacci", []string{"write_file", "math_stats"}},
	{"mean", []string{"math_stats"}},
	{"median", []string{"math_stats"}},
	{"sum", []string{"math_stats"}},
	{"add", []string{"math_stats"}},
	{"subtract", []string{"math_stats"}},
	{"multiply", []string{"math_stats"}},
	{"divide", []string{"math_stats"}},
	{"math", []string{"math_stats"}},
	{"calculate", []string{"math_stats"}},
	{"memoize", []string{"memoize"}},
	{"memo", []string{"memoize"}},
	{"retrieve", []string{"retrieve_memo"}},
	{"analyze", []string{"text_analysis", "data_analysis"}},
	{"analysis", []string{"text_analysis", "data_analysis"}},
	{"word_count", []string{"text_analysis"}},
	{"sentence_count", []string{"text_analysis"}},
	{"key_terms", []string{"text_analysis"}},
	{"complexity", []string{"text_analysis"}},
	{"statistics", []string{"data_analysis"}},
	{"stats", []string{"data_analysis"}},
	{"outlier", []string{"data_analysis"}},
	{"percentile", []string{"data_analysis"}},
	{"distribution", []string{"data_analysis"}},
	{"z_score", []string{"data_analysis"}},
	{"normalize", []string{"data_analysis"}},
	{"correlation", []string{"data_analysis"}},
	{"json", []string{"json_parser"}},
	{"parse", []string{"json_parser"}},
	{"validate", []string{"json_parser"}},
	{"flatten", []string{"json_parser"}},
	{"extract_keys", []string{"json_parser"}},
	{"regex", []string{"regex_matcher"}},
	{"pattern", []string{"regex_matcher"}},
	{"match", []string{"regex_matcher"}},
	{"find_all", []string{"regex_matcher"}},
}

var (
	reTaskColon    = regexp.MustCompile(`^[Tt]ask\s*(\d+)\s*:\s*(.+)`)
	reNumbered     = regexp.MustCompile(`^(\d+)\s*[)\.:\-]\s+(.+)`)
	reBullet       = regexp.MustCompile(`^[-*+]\s+(.+)`)
	reSubtask      = regexp.MustCompile(`(?i)^\s+(?:(\d+)([a-z])\s*[.):\-]\s*|(\d+)\.(\d+)\s*[.):\-]?\s*)(.+)`)
	reTaskPattern  = regexp.MustCompile(`^\s*(?:[Tt]ask\s*\d+\s*:|\d+\s*[)\.:\-]\s|\d+[a-z]\s*[.):\-]|\d+\.\d+\s*[.):\-]?|[-*+]\s)`)
	reFallbackTask = regexp.MustCompile(`(?i)^(task\s*\d+\s*:)`)
	reFallbackNum  = regexp.MustCompile(`^\d+[)\.:\-\s]`)
)

// ParseMissions parses user input into a Plan, guarded by a hard
// wall-clock timeout. On timeout or unexpected panic, it returns the
// fallback plan (the regex extractor, or a single "Primary mission").
func ParseMissions(userInput string, timeout time.Duration) Plan {
	if timeout <= 0 {
		return parseMissionsInner(userInput)
	}

	result := make(chan Plan, 1)
	go func() {
		plan := buildFallbackPlan(userInput)
		func() {
			defer func() { recover() }()
			plan = parseMissionsInner(userInput)
		}()
		result <- plan
	}()

	select {
	case plan := <-result:
		return plan
	case <-time.After(timeout):
		return buildFallbackPlan(userInput)
	}
}

func parseMissionsInner(userInput string) Plan {
	lines := splitLines(userInput)

	if steps := parseNumberedTasks(lines); len(steps) > 0 {
		parseNestedSubtasks(lines, &steps)
		parseMultilineDescriptions(lines, steps)
		suggestToolsForSteps(steps)
		detectDependencies(steps)
		return Plan{Steps: steps, FlatMissions: stepsToFlatMissions(steps), ParsingMethod: ParsingMethodStructured}
	}

	if steps := parseBulletLists(lines); len(steps) > 0 {
		suggestToolsForSteps(steps)
		detectDependencies(steps)
		return Plan{Steps: steps, FlatMissions: stepsToFlatMissions(steps), ParsingMethod: ParsingMethodStructured}
	}

	return buildFallbackPlan(userInput)
}

func splitLines(userInput string) []string {
	raw := strings.Split(userInput, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return lines
}

func parseNumberedTasks(lines []string) []Step {
	var steps []Step
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if m := reTaskColon.FindStringSubmatch(stripped); m != nil {
			steps = append(steps, Step{ID: m[1], Description: strings.TrimSpace(m[2])})
			continue
		}
		if m := reNumbered.FindStringSubmatch(stripped); m != nil {
			steps = append(steps, Step{ID: m[1], Description: strings.TrimSpace(m[2])})
			continue
		}
	}
	return steps
}

func parseBulletLists(lines []string) []Step {
	var steps []Step
	counter := 0
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if m := reBullet.FindStringSubmatch(stripped); m != nil {
			counter++
			steps = append(steps, Step{ID: strconv.Itoa(counter), Description: strings.TrimSpace(m[1])})
		}
	}
	return steps
}

func parseNestedSubtasks(lines []string, parentSteps *[]Step) {
	parentIDs := make(map[string]bool, len(*parentSteps))
	for _, s := range *parentSteps {
		parentIDs[s.ID] = true
	}

	for _, line := range lines {
		m := reSubtask.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		var parentID, subID, desc string
		if m[1] != "" && m[2] != "" {
			parentID = m[1]
			subID = m[1] + m[2]
			desc = strings.TrimSpace(m[5])
		} else if m[3] != "" && m[4] != "" {
			parentID = m[3]
			subID = m[3] + "." + m[4]
			desc = strings.TrimSpace(m[5])
		} else {
			continue
		}

		if !parentIDs[parentID] {
			continue
		}
		duplicate := false
		for _, s := range *parentSteps {
			if s.ID == subID {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		*parentSteps = append(*parentSteps, Step{ID: subID, Description: desc, ParentID: parentID})
	}
}

func parseMultilineDescriptions(lines []string, steps []Step) {
	stepByLine := make(map[int]*Step, len(lines))
	for li, line := range lines {
		stripped := strings.TrimSpace(line)
		for i := range steps {
			if steps[i].Description != "" && strings.HasSuffix(stripped, steps[i].Description) {
				stepByLine[li] = &steps[i]
				break
			}
		}
	}

	var current *Step
	for li, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			current = nil
			continue
		}
		if s, ok := stepByLine[li]; ok {
			current = s
			continue
		}
		if reTaskPattern.MatchString(line) {
			continue
		}
		if strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t") {
			if current != nil {
				current.Description += " " + stripped
			}
		}
	}
}

func suggestToolsForSteps(steps []Step) {
	for i := range steps {
		steps[i].SuggestedTools = suggestToolsForDescription(steps[i].Description)
	}
}

func suggestToolsForDescription(description string) []string {
	descLower := strings.ToLower(description)
	var suggested []string
	seen := make(map[string]bool)
	for _, entry := range toolKeywordMap {
		if !strings.Contains(descLower, entry.keyword) {
			continue
		}
		for _, tool := range entry.tools {
			if !seen[tool] {
				seen[tool] = true
				suggested = append(suggested, tool)
			}
		}
	}
	return suggested
}

func detectDependencies(steps []Step) {
	groupOrder := make([]string, 0)
	groups := make(map[string][]int)
	for i, s := range steps {
		key := s.ParentID
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range groupOrder {
		indices := groups[key]
		for pos, idx := range indices {
			if pos > 0 {
				steps[idx].Dependencies = append(steps[idx].Dependencies, steps[indices[pos-1]].ID)
			}
			if steps[idx].ParentID != "" && !contains(steps[idx].Dependencies, steps[idx].ParentID) {
				if pos == 0 {
					steps[idx].Dependencies = append(steps[idx].Dependencies, steps[idx].ParentID)
				}
			}
		}
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func stepsToFlatMissions(steps []Step) []string {
	var flat []string
	for _, s := range steps {
		if s.IsTopLevel() {
			flat = append(flat, "Task "+s.ID+": "+s.Description)
		}
	}
	if len(flat) == 0 {
		for _, s := range steps {
			flat = append(flat, s.Description)
		}
	}
	return flat
}

func buildFallbackPlan(userInput string) Plan {
	missions := extractMissionsRegexFallback(userInput)
	steps := make([]Step, len(missions))
	for i, m := range missions {
		steps[i] = Step{ID: strconv.Itoa(i + 1), Description: m}
	}
	suggestToolsForSteps(steps)
	return Plan{Steps: steps, FlatMissions: missions, ParsingMethod: ParsingMethodRegexFallback}
}

func extractMissionsRegexFallback(userInput string) []string {
	var taskLines []string
	for _, line := range strings.Split(userInput, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if reFallbackTask.MatchString(stripped) {
			taskLines = append(taskLines, stripped)
			continue
		}
		if reFallbackNum.MatchString(stripped) {
			taskLines = append(taskLines, stripped)
		}
	}
	if len(taskLines) > 0 {
		return taskLines
	}
	return []string{"Primary mission"}
}

