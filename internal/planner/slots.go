package planner

import (
	"sort"
	"time"
)

// generateSlots expands productivity windows into concrete one-hour slots over
// the planning horizon, skipping past hours, calendar event overlaps, and
// weekends when the user declared no availability.
func generateSlots(windows []Window, events []Event, prefs Preferences, now time.Time, horizonDays int) []Slot {
	if horizonDays <= 0 {
		horizonDays = 7
	}
	skipWeekends := len(prefs.AvailableHours) == 0

	// When overlapping windows produce the same hour, the higher-efficiency
	// window wins; windows arrive sorted by efficiency descending.
	byStart := make(map[time.Time]Slot)
	for day := 0; day < horizonDays; day++ {
		date := now.AddDate(0, 0, day)
		weekday := date.Weekday()
		if skipWeekends && (weekday == time.Saturday || weekday == time.Sunday) {
			continue
		}
		for _, window := range windows {
			if window.Day != nil && *window.Day != weekday {
				continue
			}
			for hour := window.StartHour; hour < window.EndHour && hour < 24; hour++ {
				start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, now.Location())
				end := start.Add(time.Hour)
				if !end.After(now) {
					continue
				}
				if overlapsAnyEvent(start, end, events) {
					continue
				}
				if _, exists := byStart[start]; exists {
					continue
				}
				byStart[start] = Slot{
					Start:      start,
					End:        end,
					Efficiency: window.Efficiency,
					TimeOfDay:  timeOfDay(hour),
				}
			}
		}
	}

	slots := make([]Slot, 0, len(byStart))
	for _, slot := range byStart {
		slots = append(slots, slot)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Efficiency == slots[j].Efficiency {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].Efficiency > slots[j].Efficiency
	})
	return slots
}

// overlapsAnyEvent reports whether [start,end) collides with any event: either
// endpoint inside the event, or the slot containing the event entirely.
func overlapsAnyEvent(start, end time.Time, events []Event) bool {
	for _, ev := range events {
		startsInside := !start.Before(ev.Start) && start.Before(ev.End)
		endsInside := end.After(ev.Start) && !end.After(ev.End)
		contains := !start.After(ev.Start) && !end.Before(ev.End)
		if startsInside || endsInside || contains {
			return true
		}
	}
	return false
}

func timeOfDay(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 22:
		return Evening
	default:
		return LateNight
	}
}
