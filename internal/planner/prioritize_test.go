package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrioritizeTasksDropsCompleted(t *testing.T) {
	tasks := []Task{
		{ID: "done", Completed: true, Priority: PriorityHigh},
		{ID: "open", Priority: PriorityLow},
	}

	ordered := prioritizeTasks(tasks, Preferences{}, nil, monday)

	require.Len(t, ordered, 1)
	assert.Equal(t, "open", ordered[0].ID)
}

func TestPrioritizeTasksOrdersByUrgencyAndPriority(t *testing.T) {
	tasks := []Task{
		{ID: "relaxed", Priority: PriorityLow, DueDate: monday.AddDate(0, 1, 0)},
		{ID: "overdue", Priority: PriorityLow, DueDate: monday.AddDate(0, 0, -1)},
		{ID: "important", Priority: PriorityHigh, DueDate: monday.AddDate(0, 1, 0)},
	}

	ordered := prioritizeTasks(tasks, Preferences{}, nil, monday)

	require.Len(t, ordered, 3)
	// overdue: 2 + 20 = 22; important: 10; relaxed: 2
	assert.Equal(t, "overdue", ordered[0].ID)
	assert.Equal(t, "important", ordered[1].ID)
	assert.Equal(t, "relaxed", ordered[2].ID)
}

func TestPrioritizeTasksBoostsStrugglingSubjects(t *testing.T) {
	tasks := []Task{
		{ID: "math", Subject: "Math", Priority: PriorityMedium, DueDate: monday.AddDate(0, 1, 0)},
		{ID: "art", Subject: "Art", Priority: PriorityMedium, DueDate: monday.AddDate(0, 1, 0)},
	}
	prefs := Preferences{StrugglingSubjects: []string{"math"}}

	ordered := prioritizeTasks(tasks, prefs, nil, monday)

	assert.Equal(t, "math", ordered[0].ID)
}

func TestPrioritizeTasksUsesHistoricalCompletionRate(t *testing.T) {
	history := []Task{
		{ID: "h1", Subject: "Physics", Completed: false},
		{ID: "h2", Subject: "Physics", Completed: false},
		{ID: "h3", Subject: "History", Completed: true},
	}
	tasks := []Task{
		{ID: "easy", Subject: "History", Priority: PriorityMedium, DueDate: monday.AddDate(0, 1, 0)},
		{ID: "hard", Subject: "Physics", Priority: PriorityMedium, DueDate: monday.AddDate(0, 1, 0)},
	}

	ordered := prioritizeTasks(tasks, Preferences{}, history, monday)

	assert.Equal(t, "hard", ordered[0].ID, "a 0% completion rate earns the full bonus")
}

func TestPrioritizeTasksTieBreaksOnDueDateThenID(t *testing.T) {
	tasks := []Task{
		{ID: "b", Priority: PriorityMedium, DueDate: monday.AddDate(0, 1, 0)},
		{ID: "a", Priority: PriorityMedium, DueDate: monday.AddDate(0, 1, 0)},
		{ID: "c", Priority: PriorityMedium, DueDate: monday.AddDate(0, 1, -1)},
	}

	ordered := prioritizeTasks(tasks, Preferences{}, nil, monday)

	assert.Equal(t, "c", ordered[0].ID)
	assert.Equal(t, "a", ordered[1].ID)
	assert.Equal(t, "b", ordered[2].ID)
}

func TestScoreTaskAddsOverrunBonus(t *testing.T) {
	history := []Task{
		{ID: "h1", Subject: "Chem", Completed: true, EstimatedMinutes: 60, ActualMinutes: 90},
		{ID: "h2", Subject: "Chem", Completed: true, EstimatedMinutes: 60, ActualMinutes: 100},
	}
	task := Task{ID: "t", Subject: "Chem", Priority: PriorityMedium, EstimatedMinutes: 60, DueDate: monday.AddDate(0, 1, 0)}

	withHistory := scoreTask(task, Preferences{}, history, subjectCompletionRates(history), monday)
	without := scoreTask(task, Preferences{}, nil, nil, monday)

	assert.Greater(t, withHistory, without)
}
