package dto

import "time"

// GeneratePlanRequest triggers a planning run over the user's open tasks.
// HorizonDays defaults to the configured horizon when omitted.
type GeneratePlanRequest struct {
	HorizonDays int `json:"horizonDays" validate:"omitempty,min=1,max=31"`
}

// ScheduledTaskResponse is one placed task inside a plan.
type ScheduledTaskResponse struct {
	TaskID         string    `json:"taskId"`
	Title          string    `json:"title"`
	Subject        string    `json:"subject,omitempty"`
	Priority       string    `json:"priority"`
	ScheduledStart time.Time `json:"scheduledStart"`
	ScheduledEnd   time.Time `json:"scheduledEnd"`
	Confidence     float64   `json:"confidence"`
	Efficiency     float64   `json:"efficiency"`
	SlotCount      int       `json:"slotCount"`
	Reasoning      string    `json:"reasoning,omitempty"`
}

// AdjustmentResponse is one advisory suggestion attached to a plan.
type AdjustmentResponse struct {
	Kind     string   `json:"kind"`
	Priority string   `json:"priority"`
	Impact   string   `json:"impact"`
	Effort   string   `json:"effort"`
	Message  string   `json:"message"`
	TaskIDs  []string `json:"taskIds,omitempty"`
}

// ResolutionResponse records how one scheduling conflict was settled.
type ResolutionResponse struct {
	Kind     string `json:"kind"`
	WinnerID string `json:"winnerId"`
	LoserID  string `json:"loserId"`
	Reason   string `json:"reason"`
}

// PlanResponse is a full study plan with its schedule and run summary.
type PlanResponse struct {
	ID             string                  `json:"id"`
	HorizonStart   time.Time               `json:"horizonStart"`
	HorizonEnd     time.Time               `json:"horizonEnd"`
	Status         string                  `json:"status"`
	Schedule       []ScheduledTaskResponse `json:"schedule"`
	Adjustments    []AdjustmentResponse    `json:"adjustments"`
	Resolutions    []ResolutionResponse    `json:"resolutions"`
	TotalTasks     int                     `json:"totalTasks"`
	ScheduledTasks int                     `json:"scheduledTasks"`
	Conflicts      int                     `json:"conflicts"`
	Efficiency     float64                 `json:"efficiency"`
	Confidence     float64                 `json:"confidence"`
	CreatedAt      time.Time               `json:"createdAt"`
}
