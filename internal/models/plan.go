package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StudyPlanStatus tracks whether a stored plan is the user's current one.
type StudyPlanStatus string

const (
	StudyPlanStatusActive     StudyPlanStatus = "ACTIVE"
	StudyPlanStatusSuperseded StudyPlanStatus = "SUPERSEDED"
)

// StudyPlan is a persisted planning run: the horizon it covers, aggregate
// metrics, and a JSON meta blob with advisory output.
type StudyPlan struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	HorizonStart   time.Time       `db:"horizon_start" json:"horizon_start"`
	HorizonEnd     time.Time       `db:"horizon_end" json:"horizon_end"`
	Status         StudyPlanStatus `db:"status" json:"status"`
	TotalTasks     int             `db:"total_tasks" json:"total_tasks"`
	ScheduledTasks int             `db:"scheduled_tasks" json:"scheduled_tasks"`
	Conflicts      int             `db:"conflicts" json:"conflicts"`
	Efficiency     float64         `db:"efficiency" json:"efficiency"`
	Confidence     float64         `db:"confidence" json:"confidence"`
	Meta           types.JSONText  `db:"meta" json:"meta,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// PlannedTask is one task bound to a concrete start/end inside a plan.
type PlannedTask struct {
	ID             string    `db:"id" json:"id"`
	PlanID         string    `db:"plan_id" json:"plan_id"`
	TaskID         string    `db:"task_id" json:"task_id"`
	ScheduledStart time.Time `db:"scheduled_start" json:"scheduled_start"`
	ScheduledEnd   time.Time `db:"scheduled_end" json:"scheduled_end"`
	Confidence     float64   `db:"confidence" json:"confidence"`
	Efficiency     float64   `db:"efficiency" json:"efficiency"`
	SlotCount      int       `db:"slot_count" json:"slot_count"`
	Reasoning      string    `db:"reasoning" json:"reasoning"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
