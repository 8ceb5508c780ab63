package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studyflow-api/internal/dto"
	"github.com/noah-isme/studyflow-api/internal/models"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
)

type taskRepository interface {
	FindByID(ctx context.Context, userID, id string) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	MarkCompleted(ctx context.Context, userID, id string, completedAt time.Time, actualMinutes int) error
	Delete(ctx context.Context, userID, id string) error
}

// replanTrigger schedules a background plan refresh after completion events.
type replanTrigger interface {
	TriggerReplan(userID string)
}

// TaskService provides task management use cases.
type TaskService struct {
	repo      taskRepository
	replanner replanTrigger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaskService constructs a TaskService. The replanner may be nil when
// background replanning is disabled.
func NewTaskService(repo taskRepository, replanner replanTrigger, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TaskService{repo: repo, replanner: replanner, validator: validate, logger: logger}
}

// List returns the user's tasks with pagination info.
func (s *TaskService) List(ctx context.Context, userID string, query dto.TaskQuery) ([]dto.TaskResponse, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task query")
	}

	filter := models.TaskFilter{
		UserID:    userID,
		Subject:   query.Subject,
		Completed: query.Completed,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Priority != "" {
		priority := models.TaskPriority(query.Priority)
		filter.Priority = &priority
	}
	if query.Type != "" {
		taskType := models.TaskType(query.Type)
		filter.Type = &taskType
	}

	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, toTaskResponse(task))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return responses, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*dto.TaskResponse, error) {
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	resp := toTaskResponse(*task)
	return &resp, nil
}

// Create adds a new task to the user's backlog.
func (s *TaskService) Create(ctx context.Context, userID string, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	task := &models.Task{
		UserID:           userID,
		Title:            req.Title,
		Description:      req.Description,
		Subject:          req.Subject,
		DueDate:          req.DueDate,
		Priority:         models.TaskPriority(req.Priority),
		Type:             models.TaskType(req.Type),
		EstimatedMinutes: req.EstimatedMinutes,
		Difficulty:       req.Difficulty,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}

	resp := toTaskResponse(*task)
	return &resp, nil
}

// Update replaces the mutable fields of an existing task.
func (s *TaskService) Update(ctx context.Context, userID, id string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	if task.Completed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "completed tasks cannot be edited")
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Subject = req.Subject
	task.DueDate = req.DueDate
	task.Priority = models.TaskPriority(req.Priority)
	task.Type = models.TaskType(req.Type)
	task.EstimatedMinutes = req.EstimatedMinutes
	task.Difficulty = req.Difficulty

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}

	resp := toTaskResponse(*task)
	return &resp, nil
}

// Complete marks a task done and triggers a background replan so the user's
// schedule reflects the freed-up time.
func (s *TaskService) Complete(ctx context.Context, userID, id string, req dto.CompleteTaskRequest) (*dto.TaskResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid completion payload")
	}

	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}

	actualMinutes := req.ActualMinutes
	if actualMinutes <= 0 {
		actualMinutes = task.EstimatedMinutes
	}
	completedAt := time.Now().UTC()

	if err := s.repo.MarkCompleted(ctx, userID, id, completedAt, actualMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "task is already completed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete task")
	}

	task.Completed = true
	task.CompletedAt = &completedAt
	task.ActualMinutes = actualMinutes

	if s.replanner != nil {
		s.replanner.TriggerReplan(userID)
	}

	resp := toTaskResponse(*task)
	return &resp, nil
}

// Delete removes a task permanently.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	return nil
}

func toTaskResponse(task models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		Subject:          task.Subject,
		DueDate:          task.DueDate,
		Priority:         string(task.Priority),
		Type:             string(task.Type),
		Completed:        task.Completed,
		CompletedAt:      task.CompletedAt,
		EstimatedMinutes: task.EstimatedMinutes,
		ActualMinutes:    task.ActualMinutes,
		Difficulty:       task.Difficulty,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
}
