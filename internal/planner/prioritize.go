package planner

import (
	"sort"
	"time"
)

const (
	overdueBonus     = 20.0
	dueTomorrowBonus = 15.0
	dueThisWeekBonus = 10.0
	dueNextWeekBonus = 5.0
	strugglingBonus  = 8.0
	longTaskBonus    = 3.0
	overrunBonus     = 4.0
	overrunThreshold = 1.2
	longTaskMinutes  = 120
)

// prioritizeTasks keeps incomplete tasks and sorts them by a weighted urgency
// score, highest first. Ties break on due date, then ID, so output order is
// deterministic.
func prioritizeTasks(tasks []Task, prefs Preferences, history []Task, now time.Time) []Task {
	pending := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if !task.Completed {
			pending = append(pending, task)
		}
	}

	rates := subjectCompletionRates(history)
	scores := make(map[string]float64, len(pending))
	for _, task := range pending {
		scores[task.ID] = scoreTask(task, prefs, history, rates, now)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		si, sj := scores[pending[i].ID], scores[pending[j].ID]
		if si != sj {
			return si > sj
		}
		if !pending[i].DueDate.Equal(pending[j].DueDate) {
			return pending[i].DueDate.Before(pending[j].DueDate)
		}
		return pending[i].ID < pending[j].ID
	})
	return pending
}

func scoreTask(task Task, prefs Preferences, history []Task, rates map[string]float64, now time.Time) float64 {
	score := priorityBase(task.Priority)
	score += urgencyBonus(task.DueDate, now)

	if task.Subject != "" {
		if containsFold(prefs.StrugglingSubjects, task.Subject) {
			score += strugglingBonus
		} else if rate, ok := rates[task.Subject]; ok {
			score += (1 - rate) * 5
		}
	}

	if task.EstimatedMinutes > longTaskMinutes {
		score += longTaskBonus
	}

	if similarTasksOverran(task, history) {
		score += overrunBonus
	}
	return score
}

func priorityBase(p Priority) float64 {
	switch p {
	case PriorityHigh:
		return 10
	case PriorityMedium:
		return 5
	default:
		return 2
	}
}

func urgencyBonus(due time.Time, now time.Time) float64 {
	if due.IsZero() {
		return 0
	}
	until := due.Sub(now)
	switch {
	case until < 0:
		return overdueBonus
	case until <= 24*time.Hour:
		return dueTomorrowBonus
	case until <= 3*24*time.Hour:
		return dueThisWeekBonus
	case until <= 7*24*time.Hour:
		return dueNextWeekBonus
	default:
		return 0
	}
}

func subjectCompletionRates(history []Task) map[string]float64 {
	totals := make(map[string]int)
	done := make(map[string]int)
	for _, task := range history {
		if task.Subject == "" {
			continue
		}
		totals[task.Subject]++
		if task.Completed {
			done[task.Subject]++
		}
	}
	rates := make(map[string]float64, len(totals))
	for subject, total := range totals {
		rates[subject] = float64(done[subject]) / float64(total)
	}
	return rates
}

// similarTasksOverran reports whether comparable completed tasks (same
// subject, type, or priority) took more than 1.2x their estimate on average.
func similarTasksOverran(task Task, history []Task) bool {
	var sum float64
	var count int
	for _, h := range history {
		if !h.Completed || h.EstimatedMinutes <= 0 || h.ActualMinutes <= 0 {
			continue
		}
		similar := (task.Subject != "" && h.Subject == task.Subject) ||
			h.Type == task.Type ||
			h.Priority == task.Priority
		if !similar {
			continue
		}
		sum += float64(h.ActualMinutes) / float64(h.EstimatedMinutes)
		count++
	}
	return count > 0 && sum/float64(count) > overrunThreshold
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if equalFold(item, value) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
