package mission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMissions_NumberedTasks(t *testing.T) {
	input := "Task 1: sort the array\nTask 2: write the result"
	plan := ParseMissions(input, time.Second)

	require.Equal(t, ParsingMethodStructured, plan.ParsingMethod)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "1", plan.Steps[0].ID)
	assert.Equal(t, "sort the array", plan.Steps[0].Description)
	assert.Contains(t, plan.Steps[0].SuggestedTools, "sort_array")
	assert.Equal(t, []string{"Task 1: sort the array", "Task 2: write the result"}, plan.FlatMissions)
}

func TestParseMissions_NestedSubtasks(t *testing.T) {
	input := "1. Parent task\n  1a. first subtask\n  1b. second subtask"
	plan := ParseMissions(input, time.Second)

	require.Len(t, plan.Steps, 3)
	var sub1, sub2 *Step
	for i := range plan.Steps {
		switch plan.Steps[i].ID {
		case "1a":
			sub1 = &plan.Steps[i]
		case "1b":
			sub2 = &plan.Steps[i]
		}
	}
	require.NotNil(t, sub1)
	require.NotNil(t, sub2)
	assert.Equal(t, "1", sub1.ParentID)
	assert.Contains(t, sub1.Dependencies, "1")
	assert.Contains(t, sub2.Dependencies, "1a")
}

func TestParseMissions_BulletList(t *testing.T) {
	input := "- first item\n- second item"
	plan := ParseMissions(input, time.Second)

	require.Equal(t, ParsingMethodStructured, plan.ParsingMethod)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "1", plan.Steps[0].ID)
	assert.Equal(t, "2", plan.Steps[1].ID)
}

func TestParseMissions_RegexFallback(t *testing.T) {
	input := "TASK 1: do this thing\n2)do another"
	plan := ParseMissions(input, time.Second)

	require.Equal(t, ParsingMethodRegexFallback, plan.ParsingMethod)
	assert.Len(t, plan.Steps, 2)
}

func TestParseMissions_PrimaryMissionFallback(t *testing.T) {
	input := "just do something useful please"
	plan := ParseMissions(input, time.Second)

	require.Equal(t, ParsingMethodRegexFallback, plan.ParsingMethod)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "Primary mission", plan.Steps[0].Description)
}

func TestParseMissions_FibonacciSuggestsWriteFileAndMathStats(t *testing.T) {
	plan := ParseMissions("Task 1: write the fibonacci sequence to fib.txt", time.Second)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, []string{"write_file", "math_stats"}, plan.Steps[0].SuggestedTools)
}

func TestParseMissions_SequentialDependencies(t *testing.T) {
	plan := ParseMissions("Task 1: first\nTask 2: second\nTask 3: third", time.Second)
	require.Len(t, plan.Steps, 3)
	assert.Empty(t, plan.Steps[0].Dependencies)
	assert.Equal(t, []string{"1"}, plan.Steps[1].Dependencies)
	assert.Equal(t, []string{"2"}, plan.Steps[2].Dependencies)
}

func TestParseMissions_ZeroTimeoutSkipsGoroutine(t *testing.T) {
	plan := ParseMissions("Task 1: sort it", 0)
	require.Len(t, plan.Steps, 1)
}
