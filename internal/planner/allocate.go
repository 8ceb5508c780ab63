package planner

import (
	"fmt"
	"sort"
	"time"
)

const (
	strugglingMinEfficiency = 0.7
	difficultMinEfficiency  = 0.6
	difficultyThreshold     = 7
	splittableMinMinutes    = 90
	contiguousSuitability   = 1.0
	splitSuitability        = 0.5
)

// allocateTasks walks the prioritized tasks and assigns each to its best
// suitable slots. When a task cannot be placed because another task already
// holds the slots it wants, the contention is settled by the same rules as
// overlap resolution: the loser yields, the winner keeps or takes the hours,
// and a Resolution records the outcome. Tasks that fit nowhere at all are
// dropped silently; downstream advice never mentions them, the metadata
// counts do.
func allocateTasks(tasks []Task, slots []Slot, prefs Preferences) ([]ScheduledTask, []Resolution) {
	free := make(map[time.Time]Slot, len(slots))
	for _, slot := range slots {
		free[slot.Start] = slot
	}
	owners := make(map[time.Time]string, len(slots))
	reserved := make(map[string][]Slot)

	var scheduled []ScheduledTask
	var resolutions []Resolution

	claim := func(entry ScheduledTask, chosen []Slot) {
		scheduled = append(scheduled, entry)
		reserved[entry.ID] = chosen
		for _, slot := range chosen {
			owners[slot.Start] = entry.ID
		}
	}

	for _, task := range tasks {
		entry, chosen := place(task, slots, free, prefs)
		if entry != nil {
			claim(*entry, chosen)
			continue
		}

		wanted := wantedSlots(task, slots, prefs)
		if wanted == nil {
			// no slot suits this task regardless of occupancy
			continue
		}

		// The wanted hours are held by earlier placements. Settle against
		// each holder in turn; a displaced holder gets one chance to refit
		// after the winner has claimed its hours.
		var displaced []Task
		lost := false
		for entry == nil && !lost {
			holder := blockingOwner(wanted, free, owners)
			if holder == "" {
				break
			}
			idx := indexOfTask(scheduled, holder)
			if idx < 0 {
				break
			}
			incumbent := scheduled[idx]
			winner, _, res := settle(incumbent, ScheduledTask{Task: task})
			resolutions = append(resolutions, res)
			if winner.ID != task.ID {
				lost = true
				break
			}

			for _, slot := range reserved[incumbent.ID] {
				free[slot.Start] = slot
				delete(owners, slot.Start)
			}
			delete(reserved, incumbent.ID)
			scheduled = append(scheduled[:idx], scheduled[idx+1:]...)
			displaced = append(displaced, incumbent.Task)

			entry, chosen = place(task, slots, free, prefs)
		}
		if entry != nil {
			claim(*entry, chosen)
		}
		for _, evicted := range displaced {
			if refit, refitSlots := place(evicted, slots, free, prefs); refit != nil {
				claim(*refit, refitSlots)
			}
		}
	}
	return scheduled, resolutions
}

// place finds the best placement for the task among the remaining free slots
// and marks the chosen slots used. It returns nil when nothing fits.
func place(task Task, slots []Slot, free map[time.Time]Slot, prefs Preferences) (*ScheduledTask, []Slot) {
	needed := slotsNeeded(task)
	if run := findContiguousRun(slots, free, task, prefs, needed); run != nil {
		entry := placeTask(task, run, free, contiguousSuitability)
		return &entry, run
	}
	if task.Type != TypePersonal && task.EstimatedMinutes > splittableMinMinutes {
		if split := findSplitSlots(slots, free, task, prefs, needed); split != nil {
			entry := placeTask(task, split, free, splitSuitability)
			return &entry, split
		}
	}
	return nil, nil
}

// wantedSlots reports the slots the task would claim if every slot were free.
// A nil result means the task is unschedulable within this horizon.
func wantedSlots(task Task, slots []Slot, prefs Preferences) []Slot {
	open := make(map[time.Time]Slot, len(slots))
	for _, slot := range slots {
		open[slot.Start] = slot
	}
	needed := slotsNeeded(task)
	if run := findContiguousRun(slots, open, task, prefs, needed); run != nil {
		return run
	}
	if task.Type != TypePersonal && task.EstimatedMinutes > splittableMinMinutes {
		return findSplitSlots(slots, open, task, prefs, needed)
	}
	return nil
}

// blockingOwner returns the task holding the first wanted slot that is no
// longer free, or "" when every occupied wanted slot is unowned.
func blockingOwner(wanted []Slot, free map[time.Time]Slot, owners map[time.Time]string) string {
	for _, slot := range wanted {
		if _, open := free[slot.Start]; open {
			continue
		}
		if id, ok := owners[slot.Start]; ok {
			return id
		}
	}
	return ""
}

func indexOfTask(scheduled []ScheduledTask, id string) int {
	for i, item := range scheduled {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func slotsNeeded(task Task) int {
	needed := (task.EstimatedMinutes + 59) / 60
	if needed < 1 {
		needed = 1
	}
	return needed
}

// findContiguousRun returns the first run of consecutive free hours, anchored
// at the highest-efficiency suitable slot, long enough for the task.
func findContiguousRun(slots []Slot, free map[time.Time]Slot, task Task, prefs Preferences, needed int) []Slot {
	for _, slot := range slots {
		if _, ok := free[slot.Start]; !ok {
			continue
		}
		if !suitable(slot, task, prefs) {
			continue
		}
		run := []Slot{slot}
		next := slot.End
		for len(run) < needed {
			candidate, ok := free[next]
			if !ok || !suitable(candidate, task, prefs) {
				break
			}
			run = append(run, candidate)
			next = candidate.End
		}
		if len(run) == needed {
			return run
		}
	}
	return nil
}

// findSplitSlots collects the best non-contiguous suitable slots. Slots come
// pre-sorted by efficiency, so the first N free suitable ones are the best N.
func findSplitSlots(slots []Slot, free map[time.Time]Slot, task Task, prefs Preferences, needed int) []Slot {
	var chosen []Slot
	for _, slot := range slots {
		if _, ok := free[slot.Start]; !ok {
			continue
		}
		if !suitable(slot, task, prefs) {
			continue
		}
		chosen = append(chosen, slot)
		if len(chosen) == needed {
			return chosen
		}
	}
	return nil
}

func suitable(slot Slot, task Task, prefs Preferences) bool {
	if containsFold(prefs.StrugglingSubjects, task.Subject) && slot.Efficiency <= strugglingMinEfficiency {
		return false
	}
	if task.Difficulty > difficultyThreshold && slot.Efficiency < difficultMinEfficiency {
		return false
	}
	if task.Type == TypeAcademic && slot.TimeOfDay == LateNight {
		return false
	}
	return true
}

// placeTask marks the chosen slots used and builds the schedule entry. For a
// split placement the reported interval is the contiguous group holding the
// best slot; SlotCount still reflects every hour reserved.
func placeTask(task Task, chosen []Slot, free map[time.Time]Slot, suitability float64) ScheduledTask {
	for _, slot := range chosen {
		delete(free, slot.Start)
	}

	group := contiguousGroup(chosen, chosen[0])
	var effSum float64
	for _, slot := range chosen {
		effSum += slot.Efficiency
	}
	meanEff := effSum / float64(len(chosen))

	return ScheduledTask{
		Task:       task,
		Start:      group[0].Start,
		End:        group[len(group)-1].End,
		Confidence: (meanEff + suitability) / 2,
		Efficiency: meanEff,
		SlotCount:  len(chosen),
		Reasoning:  placementReason(task, group[0], len(chosen), len(group)),
	}
}

// contiguousGroup returns the maximal run of back-to-back slots, within the
// chosen set, that contains the anchor slot.
func contiguousGroup(chosen []Slot, anchor Slot) []Slot {
	ordered := make([]Slot, len(chosen))
	copy(ordered, chosen)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })

	start := 0
	for i, slot := range ordered {
		if i > 0 && !slot.Start.Equal(ordered[i-1].End) {
			start = i
		}
		if slot.Start.Equal(anchor.Start) {
			end := i
			for end+1 < len(ordered) && ordered[end+1].Start.Equal(ordered[end].End) {
				end++
			}
			return ordered[start : end+1]
		}
	}
	return ordered[:1]
}

func placementReason(task Task, first Slot, total, grouped int) string {
	base := fmt.Sprintf("placed in %s slot with %.0f%% efficiency", first.TimeOfDay, first.Efficiency*100)
	if total > grouped {
		return fmt.Sprintf("%s, split across %d sessions", base, total-grouped+1)
	}
	if total > 1 {
		return fmt.Sprintf("%s, %d consecutive hours", base, total)
	}
	if task.Priority == PriorityHigh {
		return base + ", prioritized for early completion"
	}
	return base
}
