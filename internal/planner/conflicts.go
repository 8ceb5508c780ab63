package planner

import (
	"fmt"
	"sort"
)

// resolveConflicts walks the schedule in start order and keeps a task only if
// it does not overlap anything already accepted. Every rejection produces a
// Resolution record explaining which rule decided it. The returned schedule is
// non-overlapping by construction.
func resolveConflicts(schedule []ScheduledTask) ([]ScheduledTask, []Resolution) {
	ordered := make([]ScheduledTask, len(schedule))
	copy(ordered, schedule)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})

	var accepted []ScheduledTask
	var resolutions []Resolution
	for _, candidate := range ordered {
		keep := true
		// A candidate may overlap more than one accepted task; it must beat
		// every one of them to enter the schedule.
		for keep {
			idx := overlapIndex(accepted, candidate)
			if idx < 0 {
				break
			}
			incumbent := accepted[idx]
			winner, _, resolution := settle(incumbent, candidate)
			resolutions = append(resolutions, resolution)
			if winner.ID != candidate.ID {
				keep = false
				break
			}
			accepted = append(accepted[:idx], accepted[idx+1:]...)
		}
		if keep {
			accepted = append(accepted, candidate)
		}
	}
	return accepted, resolutions
}

func overlapIndex(accepted []ScheduledTask, candidate ScheduledTask) int {
	for i, existing := range accepted {
		if candidate.Start.Before(existing.End) && existing.Start.Before(candidate.End) {
			return i
		}
	}
	return -1
}

// settle decides which of two overlapping tasks keeps its interval. Higher
// priority wins; then the earlier due date; then the longer task yields as a
// split candidate; finally the incumbent stands and the newcomer is deferred.
func settle(incumbent, candidate ScheduledTask) (winner, loser ScheduledTask, res Resolution) {
	ri, rc := priorityRank(incumbent.Priority), priorityRank(candidate.Priority)
	if ri != rc {
		winner, loser = incumbent, candidate
		if rc > ri {
			winner, loser = candidate, incumbent
		}
		return winner, loser, Resolution{
			Kind:     ResolutionReschedule,
			WinnerID: winner.ID,
			LoserID:  loser.ID,
			Reason:   fmt.Sprintf("%q outranks %q on priority", winner.Title, loser.Title),
		}
	}

	if !incumbent.DueDate.Equal(candidate.DueDate) {
		winner, loser = incumbent, candidate
		if candidate.DueDate.Before(incumbent.DueDate) {
			winner, loser = candidate, incumbent
		}
		return winner, loser, Resolution{
			Kind:     ResolutionReschedule,
			WinnerID: winner.ID,
			LoserID:  loser.ID,
			Reason:   fmt.Sprintf("%q is due sooner than %q", winner.Title, loser.Title),
		}
	}

	longer, shorter := incumbent, candidate
	if candidate.EstimatedMinutes > incumbent.EstimatedMinutes {
		longer, shorter = candidate, incumbent
	}
	if longer.EstimatedMinutes > splittableMinMinutes && longer.Type != TypePersonal {
		return shorter, longer, Resolution{
			Kind:     ResolutionSplit,
			WinnerID: shorter.ID,
			LoserID:  longer.ID,
			Reason:   fmt.Sprintf("%q can be split into shorter sessions, yielding the slot to %q", longer.Title, shorter.Title),
		}
	}

	return incumbent, candidate, Resolution{
		Kind:     ResolutionDefer,
		WinnerID: incumbent.ID,
		LoserID:  candidate.ID,
		Reason:   fmt.Sprintf("%q was scheduled first, %q deferred to the next planning run", incumbent.Title, candidate.Title),
	}
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}
