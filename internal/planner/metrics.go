package planner

import "time"

const (
	weightDataQuality = 0.3
	weightCoverage    = 0.3
	weightAlignment   = 0.2
	weightOverlapFree = 0.2
)

// computeMetadata summarises a run. Efficiency is the time-weighted mean of
// the slot efficiencies behind the schedule; confidence blends data quality,
// task coverage, efficiency alignment, and conflict-freeness.
func computeMetadata(in Input, pending []Task, schedule []ScheduledTask, resolutions []Resolution) Metadata {
	meta := Metadata{
		TotalTasks:     len(pending),
		ScheduledTasks: len(schedule),
		Conflicts:      len(resolutions),
	}

	var weighted float64
	var totalTime time.Duration
	for _, item := range schedule {
		d := item.End.Sub(item.Start)
		weighted += item.Efficiency * d.Hours()
		totalTime += d
	}
	if totalTime > 0 {
		meta.Efficiency = clamp01(weighted / totalTime.Hours())
	}

	dataQuality := 0.0
	if in.Pattern != nil {
		dataQuality = clamp01(in.Pattern.DataQuality)
	}
	coverage := 1.0
	if len(pending) > 0 {
		coverage = float64(len(schedule)) / float64(len(pending))
	}
	overlapFree := 1.0
	if len(pending) > 0 {
		overlapFree = clamp01(1 - float64(len(resolutions))/float64(len(pending)))
	}

	meta.Confidence = clamp01(
		weightDataQuality*dataQuality +
			weightCoverage*coverage +
			weightAlignment*meta.Efficiency +
			weightOverlapFree*overlapFree,
	)
	return meta
}
