package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourSlot(day, hour int, efficiency float64) Slot {
	start := time.Date(2026, 1, day, hour, 0, 0, 0, time.UTC)
	return Slot{
		Start:      start,
		End:        start.Add(time.Hour),
		Efficiency: efficiency,
		TimeOfDay:  timeOfDay(hour),
	}
}

func TestAllocateTasksPlacesMultiHourTaskContiguously(t *testing.T) {
	slots := []Slot{
		hourSlot(5, 9, 0.8),
		hourSlot(5, 10, 0.8),
		hourSlot(5, 14, 0.6),
	}
	tasks := []Task{{ID: "t1", Title: "essay", Priority: PriorityHigh, Type: TypeAcademic, EstimatedMinutes: 120}}

	scheduled, resolutions := allocateTasks(tasks, slots, Preferences{})

	assert.Empty(t, resolutions)
	require.Len(t, scheduled, 1)
	assert.Equal(t, 9, scheduled[0].Start.Hour())
	assert.Equal(t, 11, scheduled[0].End.Hour())
	assert.Equal(t, 2, scheduled[0].SlotCount)
	assert.InDelta(t, 0.9, scheduled[0].Confidence, 0.001)
}

func TestAllocateTasksKeepsAcademicWorkOutOfLateNight(t *testing.T) {
	slots := []Slot{hourSlot(5, 23, 0.9)}
	tasks := []Task{
		{ID: "study", Type: TypeAcademic, Priority: PriorityHigh, EstimatedMinutes: 60},
		{ID: "chores", Type: TypePersonal, Priority: PriorityLow, EstimatedMinutes: 60},
	}

	scheduled, resolutions := allocateTasks(tasks, slots, Preferences{})

	assert.Empty(t, resolutions, "an unsuitable slot is not a contention")
	require.Len(t, scheduled, 1)
	assert.Equal(t, "chores", scheduled[0].ID)
}

func TestAllocateTasksSplitsLongAcademicTask(t *testing.T) {
	// Two free hours on different days, no contiguous pair anywhere.
	slots := []Slot{
		hourSlot(5, 9, 0.9),
		hourSlot(6, 9, 0.8),
	}
	tasks := []Task{{ID: "t1", Type: TypeAcademic, Priority: PriorityHigh, EstimatedMinutes: 120}}

	scheduled, _ := allocateTasks(tasks, slots, Preferences{})

	require.Len(t, scheduled, 1)
	assert.Equal(t, 2, scheduled[0].SlotCount)
	// The reported interval is the best slot's contiguous group.
	assert.Equal(t, 5, scheduled[0].Start.Day())
	assert.Equal(t, time.Hour, scheduled[0].End.Sub(scheduled[0].Start))
	assert.InDelta(t, (0.85+0.5)/2, scheduled[0].Confidence, 0.001)
}

func TestAllocateTasksNeverSplitsPersonalTasks(t *testing.T) {
	slots := []Slot{
		hourSlot(5, 9, 0.9),
		hourSlot(6, 9, 0.8),
	}
	tasks := []Task{{ID: "t1", Type: TypePersonal, Priority: PriorityMedium, EstimatedMinutes: 120}}

	scheduled, resolutions := allocateTasks(tasks, slots, Preferences{})

	assert.Empty(t, scheduled, "a personal task with no contiguous run is dropped")
	assert.Empty(t, resolutions)
}

func TestAllocateTasksRequiresEfficiencyForHardTasks(t *testing.T) {
	tasks := []Task{{ID: "t1", Type: TypeAcademic, Priority: PriorityHigh, EstimatedMinutes: 60, Difficulty: 9}}

	scheduled, _ := allocateTasks(tasks, []Slot{hourSlot(5, 9, 0.5)}, Preferences{})
	assert.Empty(t, scheduled)

	scheduled, _ = allocateTasks(tasks, []Slot{hourSlot(5, 9, 0.6)}, Preferences{})
	assert.Len(t, scheduled, 1)
}

func TestAllocateTasksRequiresFocusForStrugglingSubjects(t *testing.T) {
	tasks := []Task{{ID: "t1", Subject: "Math", Type: TypeAcademic, Priority: PriorityHigh, EstimatedMinutes: 60}}
	prefs := Preferences{StrugglingSubjects: []string{"Math"}}

	scheduled, _ := allocateTasks(tasks, []Slot{hourSlot(5, 9, 0.7)}, prefs)
	assert.Empty(t, scheduled)

	scheduled, _ = allocateTasks(tasks, []Slot{hourSlot(5, 9, 0.75)}, prefs)
	assert.Len(t, scheduled, 1)
}

func TestAllocateTasksDoesNotReuseSlots(t *testing.T) {
	slots := []Slot{hourSlot(5, 9, 0.8)}
	tasks := []Task{
		{ID: "first", Title: "quiz prep", Priority: PriorityHigh, Type: TypeAcademic, EstimatedMinutes: 60},
		{ID: "second", Title: "reading", Priority: PriorityLow, Type: TypeAcademic, EstimatedMinutes: 60},
	}

	scheduled, resolutions := allocateTasks(tasks, slots, Preferences{})

	require.Len(t, scheduled, 1)
	assert.Equal(t, "first", scheduled[0].ID)

	// Losing the only suitable slot to an earlier task is a recorded conflict.
	require.Len(t, resolutions, 1)
	assert.Equal(t, ResolutionReschedule, resolutions[0].Kind)
	assert.Equal(t, "first", resolutions[0].WinnerID)
	assert.Equal(t, "second", resolutions[0].LoserID)
}

func TestAllocateTasksDisplacesLowerPriorityHolder(t *testing.T) {
	// Urgency scoring can order a low-priority task ahead of a high-priority
	// one. The high task must still win the slot when they contend for it.
	slots := []Slot{
		hourSlot(5, 9, 0.9),
		hourSlot(5, 14, 0.5),
	}
	tasks := []Task{
		{ID: "reading", Title: "reading", Priority: PriorityLow, Type: TypeAcademic, EstimatedMinutes: 60},
		{ID: "exam", Title: "exam prep", Priority: PriorityHigh, Type: TypeAcademic, EstimatedMinutes: 60, Difficulty: 9},
	}

	scheduled, resolutions := allocateTasks(tasks, slots, Preferences{})

	// The hard exam task only tolerates the morning slot; the reading task it
	// evicts refits into the afternoon.
	require.Len(t, scheduled, 2)
	byID := make(map[string]ScheduledTask, len(scheduled))
	for _, item := range scheduled {
		byID[item.ID] = item
	}
	assert.Equal(t, 9, byID["exam"].Start.Hour())
	assert.Equal(t, 14, byID["reading"].Start.Hour())

	require.Len(t, resolutions, 1)
	assert.Equal(t, ResolutionReschedule, resolutions[0].Kind)
	assert.Equal(t, "exam", resolutions[0].WinnerID)
	assert.Equal(t, "reading", resolutions[0].LoserID)
}
