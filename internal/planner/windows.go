package planner

import "sort"

const (
	patternWindowEfficiency  = 0.9
	availableHourEfficiency  = 0.7
	minHistoryForHourlyStats = 10
	minSamplesPerHour        = 3
	estimateRatioCap         = 2.0
	patternWindowLengthHours = 2
	defaultWindowLengthHours = 1
)

// analyzeWindows derives productivity windows from mined patterns, completion
// history, and declared availability, in that order of trust. It always
// returns at least one window, sorted by efficiency descending.
func analyzeWindows(in Input) []Window {
	var windows []Window

	if in.Pattern != nil {
		for _, hour := range in.Pattern.ProductiveHours {
			if hour < 0 || hour > 23 {
				continue
			}
			windows = append(windows, Window{
				StartHour:  hour,
				EndHour:    minInt(hour+patternWindowLengthHours, 24),
				Efficiency: patternWindowEfficiency,
			})
		}
	}

	windows = append(windows, hourlyHistoryWindows(in.History)...)

	for _, hour := range in.Preferences.AvailableHours {
		if hour < 0 || hour > 23 || hourCovered(windows, hour) {
			continue
		}
		windows = append(windows, Window{
			StartHour:  hour,
			EndHour:    hour + defaultWindowLengthHours,
			Efficiency: availableHourEfficiency,
		})
	}

	if len(windows) == 0 {
		windows = []Window{
			{StartHour: 9, EndHour: 11, Efficiency: 0.8},
			{StartHour: 14, EndHour: 16, Efficiency: 0.7},
			{StartHour: 19, EndHour: 21, Efficiency: 0.6},
		}
	}

	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].Efficiency == windows[j].Efficiency {
			return windows[i].StartHour < windows[j].StartHour
		}
		return windows[i].Efficiency > windows[j].Efficiency
	})
	return windows
}

// hourlyHistoryWindows aggregates estimate/actual ratios per completion hour.
// A ratio above 1 means the task finished faster than estimated.
func hourlyHistoryWindows(history []Task) []Window {
	completed := 0
	for _, task := range history {
		if task.Completed && task.CompletedAt != nil {
			completed++
		}
	}
	if completed < minHistoryForHourlyStats {
		return nil
	}

	type hourStat struct {
		sum   float64
		count int
	}
	stats := make(map[int]*hourStat)
	for _, task := range history {
		if !task.Completed || task.CompletedAt == nil || task.EstimatedMinutes <= 0 || task.ActualMinutes <= 0 {
			continue
		}
		ratio := float64(task.EstimatedMinutes) / float64(task.ActualMinutes)
		if ratio > estimateRatioCap {
			ratio = estimateRatioCap
		}
		hour := task.CompletedAt.Hour()
		if stats[hour] == nil {
			stats[hour] = &hourStat{}
		}
		stats[hour].sum += ratio
		stats[hour].count++
	}

	var windows []Window
	for hour, stat := range stats {
		if stat.count < minSamplesPerHour {
			continue
		}
		efficiency := clamp01(stat.sum / float64(stat.count) / estimateRatioCap)
		windows = append(windows, Window{
			StartHour:  hour,
			EndHour:    hour + defaultWindowLengthHours,
			Efficiency: efficiency,
		})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].StartHour < windows[j].StartHour })
	return windows
}

func hourCovered(windows []Window, hour int) bool {
	for _, w := range windows {
		if hour >= w.StartHour && hour < w.EndHour {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
