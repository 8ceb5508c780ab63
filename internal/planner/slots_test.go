package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is a fixed reference point so weekday logic stays predictable.
var monday = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func TestGenerateSlotsExpandsWindowsIntoHours(t *testing.T) {
	windows := []Window{{StartHour: 9, EndHour: 11, Efficiency: 0.8}}

	slots := generateSlots(windows, nil, Preferences{}, monday, 1)

	require.Len(t, slots, 2)
	assert.Equal(t, 9, slots[0].Start.Hour())
	assert.Equal(t, 10, slots[1].Start.Hour())
	assert.Equal(t, Morning, slots[0].TimeOfDay)
	for _, slot := range slots {
		assert.Equal(t, time.Hour, slot.End.Sub(slot.Start))
	}
}

func TestGenerateSlotsSkipsCalendarEvents(t *testing.T) {
	windows := []Window{{StartHour: 9, EndHour: 11, Efficiency: 0.8}}
	events := []Event{{
		ID:    "ev-1",
		Start: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	}}

	slots := generateSlots(windows, events, Preferences{}, monday, 1)

	require.Len(t, slots, 1)
	assert.Equal(t, 10, slots[0].Start.Hour())
}

func TestGenerateSlotsSkipsPastHours(t *testing.T) {
	windows := []Window{{StartHour: 9, EndHour: 11, Efficiency: 0.8}}
	lateMorning := time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)

	slots := generateSlots(windows, nil, Preferences{}, lateMorning, 1)

	require.Len(t, slots, 1)
	assert.Equal(t, 10, slots[0].Start.Hour(), "the in-progress hour is kept, earlier ones are not")
}

func TestGenerateSlotsSkipsWeekendsWithoutDeclaredHours(t *testing.T) {
	windows := []Window{{StartHour: 9, EndHour: 10, Efficiency: 0.8}}
	saturday := time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC)

	slots := generateSlots(windows, nil, Preferences{}, saturday, 2)
	assert.Empty(t, slots)

	slots = generateSlots(windows, nil, Preferences{AvailableHours: []int{9}}, saturday, 2)
	assert.Len(t, slots, 2, "declared availability keeps weekends in play")
}

func TestGenerateSlotsHigherEfficiencyWindowWinsOverlap(t *testing.T) {
	windows := []Window{
		{StartHour: 9, EndHour: 10, Efficiency: 0.9},
		{StartHour: 9, EndHour: 11, Efficiency: 0.6},
	}

	slots := generateSlots(windows, nil, Preferences{}, monday, 1)

	require.Len(t, slots, 2)
	assert.Equal(t, 0.9, slots[0].Efficiency)
	assert.Equal(t, 9, slots[0].Start.Hour())
	assert.Equal(t, 0.6, slots[1].Efficiency)
	assert.Equal(t, 10, slots[1].Start.Hour())
}

func TestTimeOfDayBuckets(t *testing.T) {
	assert.Equal(t, Morning, timeOfDay(5))
	assert.Equal(t, Morning, timeOfDay(11))
	assert.Equal(t, Afternoon, timeOfDay(12))
	assert.Equal(t, Evening, timeOfDay(17))
	assert.Equal(t, LateNight, timeOfDay(22))
	assert.Equal(t, LateNight, timeOfDay(2))
}
