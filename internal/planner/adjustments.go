package planner

import (
	"fmt"
	"sort"
	"time"
)

const (
	maxUnbrokenStudy   = 3 * time.Hour
	breakGapTolerance  = 30 * time.Minute
	imbalanceThreshold = 0.7
)

// suggestAdjustments inspects the resolved schedule and emits advisory
// suggestions. Nothing here changes the schedule; callers surface the advice
// to the user as-is.
func suggestAdjustments(schedule []ScheduledTask, resolutions []Resolution) []Adjustment {
	var adjustments []Adjustment

	if ids := longStudyRuns(schedule); len(ids) > 0 {
		adjustments = append(adjustments, Adjustment{
			Kind:     AdjustBreaks,
			Priority: PriorityHigh,
			Impact:   "high",
			Effort:   "low",
			Message:  "More than 3 hours of study are scheduled back to back; insert breaks between sessions",
			TaskIDs:  ids,
		})
	}

	if ids, dominant := subjectImbalance(schedule); len(ids) > 0 {
		adjustments = append(adjustments, Adjustment{
			Kind:     AdjustSubjects,
			Priority: PriorityMedium,
			Impact:   "medium",
			Effort:   "medium",
			Message:  fmt.Sprintf("Scheduled time is heavily concentrated on %s; spread sessions across subjects", dominant),
			TaskIDs:  ids,
		})
	}

	if ids := misalignedDifficulty(schedule); len(ids) > 0 {
		adjustments = append(adjustments, Adjustment{
			Kind:     AdjustDifficulty,
			Priority: PriorityMedium,
			Impact:   "medium",
			Effort:   "low",
			Message:  "Difficult tasks landed in low-efficiency slots; move them into your most productive hours",
			TaskIDs:  ids,
		})
	}

	for _, res := range resolutions {
		adjustments = append(adjustments, Adjustment{
			Kind:     AdjustConflict,
			Priority: PriorityLow,
			Impact:   "low",
			Effort:   "low",
			Message:  res.Reason,
			TaskIDs:  []string{res.LoserID},
		})
	}
	return adjustments
}

// longStudyRuns finds stretches of scheduled work where the gaps between
// sessions never exceed 30 minutes and the cumulative study time passes 3
// hours.
func longStudyRuns(schedule []ScheduledTask) []string {
	if len(schedule) == 0 {
		return nil
	}
	ordered := make([]ScheduledTask, len(schedule))
	copy(ordered, schedule)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })

	var flagged []string
	runIDs := []string{ordered[0].ID}
	runTotal := ordered[0].End.Sub(ordered[0].Start)
	prevEnd := ordered[0].End
	flush := func() {
		if runTotal > maxUnbrokenStudy {
			flagged = append(flagged, runIDs...)
		}
	}
	for _, item := range ordered[1:] {
		if item.Start.Sub(prevEnd) <= breakGapTolerance {
			runIDs = append(runIDs, item.ID)
			runTotal += item.End.Sub(item.Start)
		} else {
			flush()
			runIDs = []string{item.ID}
			runTotal = item.End.Sub(item.Start)
		}
		prevEnd = item.End
	}
	flush()
	return flagged
}

// subjectImbalance reports when the per-subject time distribution deviates
// from an even split by more than 70% of total scheduled time.
func subjectImbalance(schedule []ScheduledTask) ([]string, string) {
	totals := make(map[string]time.Duration)
	var total time.Duration
	for _, item := range schedule {
		if item.Subject == "" {
			continue
		}
		d := item.End.Sub(item.Start)
		totals[item.Subject] += d
		total += d
	}
	if len(totals) < 2 || total == 0 {
		return nil, ""
	}

	even := total / time.Duration(len(totals))
	var deviation time.Duration
	var dominant string
	var dominantShare time.Duration
	for subject, d := range totals {
		dev := d - even
		if dev < 0 {
			dev = -dev
		}
		deviation += dev
		if d > dominantShare {
			dominant, dominantShare = subject, d
		}
	}
	if float64(deviation) <= imbalanceThreshold*float64(total) {
		return nil, ""
	}

	var ids []string
	for _, item := range schedule {
		if item.Subject == dominant {
			ids = append(ids, item.ID)
		}
	}
	return ids, dominant
}

func misalignedDifficulty(schedule []ScheduledTask) []string {
	var ids []string
	for _, item := range schedule {
		if item.Difficulty > difficultyThreshold && item.Efficiency < difficultMinEfficiency {
			ids = append(ids, item.ID)
		}
	}
	return ids
}
