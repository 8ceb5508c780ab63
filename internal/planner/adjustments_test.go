package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestAdjustmentsFlagsMissingBreaks(t *testing.T) {
	schedule := []ScheduledTask{
		scheduledAt("a", 5, 9, 2),
		scheduledAt("b", 5, 11, 2),
	}

	adjustments := suggestAdjustments(schedule, nil)

	require.Len(t, adjustments, 1)
	assert.Equal(t, AdjustBreaks, adjustments[0].Kind)
	assert.ElementsMatch(t, []string{"a", "b"}, adjustments[0].TaskIDs)
}

func TestSuggestAdjustmentsAcceptsSpacedSessions(t *testing.T) {
	schedule := []ScheduledTask{
		scheduledAt("a", 5, 9, 2),
		scheduledAt("b", 5, 14, 2),
	}

	adjustments := suggestAdjustments(schedule, nil)

	assert.Empty(t, adjustments)
}

func TestSuggestAdjustmentsFlagsSubjectImbalance(t *testing.T) {
	heavy1 := scheduledAt("m1", 5, 9, 3)
	heavy1.Subject = "Math"
	heavy2 := scheduledAt("m2", 6, 9, 3)
	heavy2.Subject = "Math"
	heavy3 := scheduledAt("m3", 7, 9, 3)
	heavy3.Subject = "Math"
	light := scheduledAt("e1", 8, 9, 1)
	light.Subject = "English"

	adjustments := suggestAdjustments([]ScheduledTask{heavy1, heavy2, heavy3, light}, nil)

	var found *Adjustment
	for i := range adjustments {
		if adjustments[i].Kind == AdjustSubjects {
			found = &adjustments[i]
		}
	}
	require.NotNil(t, found)
	assert.Contains(t, found.Message, "Math")
	assert.ElementsMatch(t, []string{"m1", "m2", "m3"}, found.TaskIDs)
}

func TestSuggestAdjustmentsFlagsHardTasksInWeakSlots(t *testing.T) {
	hard := scheduledAt("hard", 5, 9, 1)
	hard.Difficulty = 9
	hard.Efficiency = 0.4

	adjustments := suggestAdjustments([]ScheduledTask{hard}, nil)

	require.Len(t, adjustments, 1)
	assert.Equal(t, AdjustDifficulty, adjustments[0].Kind)
	assert.Equal(t, []string{"hard"}, adjustments[0].TaskIDs)
}

func TestSuggestAdjustmentsEchoesResolutions(t *testing.T) {
	resolutions := []Resolution{
		{Kind: ResolutionDefer, WinnerID: "a", LoserID: "b", Reason: "\"a\" was scheduled first"},
	}

	adjustments := suggestAdjustments(nil, resolutions)

	require.Len(t, adjustments, 1)
	assert.Equal(t, AdjustConflict, adjustments[0].Kind)
	assert.Equal(t, resolutions[0].Reason, adjustments[0].Message)
	assert.Equal(t, []string{"b"}, adjustments[0].TaskIDs)
}
