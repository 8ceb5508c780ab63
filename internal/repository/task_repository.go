package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studyflow-api/internal/models"
)

const taskColumns = `id, user_id, title, description, subject, due_date, priority, task_type, completed, completed_at, estimated_minutes, actual_minutes, difficulty, created_at, updated_at`

// TaskRepository provides database access for tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindByID returns a task owned by the given user.
func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 AND user_id = $2 LIMIT 1`, taskColumns)
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	return &task, nil
}

// List returns tasks matching the filter with the total count.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	baseQuery := `FROM tasks WHERE user_id = $1`
	args := []interface{}{filter.UserID}

	var conditions []string
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(subject) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Subject))
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)+1))
		args = append(args, *filter.Priority)
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("task_type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}
	if filter.Completed != nil {
		conditions = append(conditions, fmt.Sprintf("completed = $%d", len(args)+1))
		args = append(args, *filter.Completed)
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, fmt.Sprintf("due_date <= $%d", len(args)+1))
		args = append(args, *filter.DueBefore)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"due_date":   true,
		"priority":   true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "due_date"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", taskColumns, baseQuery, sortBy, sortOrder, pageSize, offset)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	return tasks, total, nil
}

// ListOpen returns the user's incomplete tasks, the planner's working set.
func (r *TaskRepository) ListOpen(ctx context.Context, userID string) ([]models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE user_id = $1 AND completed = FALSE ORDER BY due_date ASC`, taskColumns)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

// ListCompletedSince returns completion history for pattern mining.
func (r *TaskRepository) ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE user_id = $1 AND completed = TRUE AND completed_at >= $2 ORDER BY completed_at ASC`, taskColumns)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID, since); err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	return tasks, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	const query = `INSERT INTO tasks (id, user_id, title, description, subject, due_date, priority, task_type, completed, estimated_minutes, actual_minutes, difficulty, created_at, updated_at) VALUES (:id, :user_id, :title, :description, :subject, :due_date, :priority, :task_type, :completed, :estimated_minutes, :actual_minutes, :difficulty, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a task.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET title = :title, description = :description, subject = :subject, due_date = :due_date, priority = :priority, task_type = :task_type, estimated_minutes = :estimated_minutes, difficulty = :difficulty, updated_at = :updated_at WHERE id = :id AND user_id = :user_id`
	result, err := r.db.NamedExecContext(ctx, query, task)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkCompleted records a task completion with its actual duration.
func (r *TaskRepository) MarkCompleted(ctx context.Context, userID, id string, completedAt time.Time, actualMinutes int) error {
	const query = `UPDATE tasks SET completed = TRUE, completed_at = $3, actual_minutes = $4, updated_at = $3 WHERE id = $1 AND user_id = $2 AND completed = FALSE`
	result, err := r.db.ExecContext(ctx, query, id, userID, completedAt, actualMinutes)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a task permanently.
func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
