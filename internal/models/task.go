package models

import "time"

// TaskPriority is the user-declared importance tier of a task.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TaskType distinguishes study work from everything else.
type TaskType string

const (
	TaskTypeAcademic TaskType = "academic"
	TaskTypePersonal TaskType = "personal"
)

// Task represents a user-owned task stored in the tasks table. The planner
// only reads tasks; creation and completion happen through the task API.
type Task struct {
	ID               string       `db:"id" json:"id"`
	UserID           string       `db:"user_id" json:"user_id"`
	Title            string       `db:"title" json:"title"`
	Description      string       `db:"description" json:"description"`
	Subject          string       `db:"subject" json:"subject"`
	DueDate          time.Time    `db:"due_date" json:"due_date"`
	Priority         TaskPriority `db:"priority" json:"priority"`
	Type             TaskType     `db:"task_type" json:"type"`
	Completed        bool         `db:"completed" json:"completed"`
	CompletedAt      *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
	EstimatedMinutes int          `db:"estimated_minutes" json:"estimated_minutes"`
	ActualMinutes    int          `db:"actual_minutes" json:"actual_minutes"`
	Difficulty       int          `db:"difficulty" json:"difficulty"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// TaskFilter narrows down task listings.
type TaskFilter struct {
	UserID    string
	Subject   string
	Priority  *TaskPriority
	Type      *TaskType
	Completed *bool
	DueBefore *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
