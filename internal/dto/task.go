package dto

import "time"

// CreateTaskRequest adds a task to the user's backlog.
type CreateTaskRequest struct {
	Title            string    `json:"title" validate:"required,max=200"`
	Description      string    `json:"description" validate:"max=2000"`
	Subject          string    `json:"subject" validate:"max=100"`
	DueDate          time.Time `json:"dueDate" validate:"required"`
	Priority         string    `json:"priority" validate:"required,oneof=high medium low"`
	Type             string    `json:"type" validate:"required,oneof=academic personal"`
	EstimatedMinutes int       `json:"estimatedMinutes" validate:"omitempty,min=1,max=480"`
	Difficulty       int       `json:"difficulty" validate:"omitempty,min=1,max=10"`
}

// UpdateTaskRequest replaces the mutable fields of a task.
type UpdateTaskRequest struct {
	Title            string    `json:"title" validate:"required,max=200"`
	Description      string    `json:"description" validate:"max=2000"`
	Subject          string    `json:"subject" validate:"max=100"`
	DueDate          time.Time `json:"dueDate" validate:"required"`
	Priority         string    `json:"priority" validate:"required,oneof=high medium low"`
	Type             string    `json:"type" validate:"required,oneof=academic personal"`
	EstimatedMinutes int       `json:"estimatedMinutes" validate:"omitempty,min=1,max=480"`
	Difficulty       int       `json:"difficulty" validate:"omitempty,min=1,max=10"`
}

// CompleteTaskRequest records the outcome of finishing a task. ActualMinutes
// feeds the productivity statistics behind future plans.
type CompleteTaskRequest struct {
	ActualMinutes int `json:"actualMinutes" validate:"omitempty,min=1,max=1440"`
}

// TaskQuery filters and paginates task listings.
type TaskQuery struct {
	Subject   string `form:"subject" json:"subject"`
	Priority  string `form:"priority" json:"priority" validate:"omitempty,oneof=high medium low"`
	Type      string `form:"type" json:"type" validate:"omitempty,oneof=academic personal"`
	Completed *bool  `form:"completed" json:"completed"`
	Page      int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" json:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" json:"sortBy" validate:"omitempty,oneof=due_date priority created_at"`
	SortOrder string `form:"sortOrder" json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// TaskResponse is the task representation returned by the API.
type TaskResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Subject          string     `json:"subject,omitempty"`
	DueDate          time.Time  `json:"dueDate"`
	Priority         string     `json:"priority"`
	Type             string     `json:"type"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	ActualMinutes    int        `json:"actualMinutes,omitempty"`
	Difficulty       int        `json:"difficulty,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
