package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studyflow-api/internal/models"
)

// PlanRepository provides persistence for study plans and their planned tasks.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new plan repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// FindActive returns the user's active plan, if any.
func (r *PlanRepository) FindActive(ctx context.Context, userID string) (*models.StudyPlan, error) {
	const query = `SELECT id, user_id, horizon_start, horizon_end, status, total_tasks, scheduled_tasks, conflicts, efficiency, confidence, meta, created_at FROM study_plans WHERE user_id = $1 AND status = 'ACTIVE' ORDER BY created_at DESC LIMIT 1`
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active plan: %w", err)
	}
	return &plan, nil
}

// ListPlannedTasks returns the schedule rows for a plan in start order.
func (r *PlanRepository) ListPlannedTasks(ctx context.Context, planID string) ([]models.PlannedTask, error) {
	const query = `SELECT id, plan_id, task_id, scheduled_start, scheduled_end, confidence, efficiency, slot_count, reasoning, created_at FROM planned_tasks WHERE plan_id = $1 ORDER BY scheduled_start ASC`
	var tasks []models.PlannedTask
	if err := r.db.SelectContext(ctx, &tasks, query, planID); err != nil {
		return nil, fmt.Errorf("list planned tasks: %w", err)
	}
	return tasks, nil
}

// SaveActive persists a fresh plan and its schedule in one transaction,
// marking every previously active plan for the user superseded first.
func (r *PlanRepository) SaveActive(ctx context.Context, plan *models.StudyPlan, tasks []models.PlannedTask) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	plan.Status = models.StudyPlanStatusActive

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save plan: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE study_plans SET status = 'SUPERSEDED' WHERE user_id = $1 AND status = 'ACTIVE'`, plan.UserID); err != nil {
		err = fmt.Errorf("supersede plans: %w", err)
		return err
	}

	const planQuery = `INSERT INTO study_plans (id, user_id, horizon_start, horizon_end, status, total_tasks, scheduled_tasks, conflicts, efficiency, confidence, meta, created_at) VALUES (:id, :user_id, :horizon_start, :horizon_end, :status, :total_tasks, :scheduled_tasks, :conflicts, :efficiency, :confidence, :meta, :created_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, planQuery, plan); err != nil {
		err = fmt.Errorf("insert plan: %w", err)
		return err
	}

	if err = r.insertPlannedTasks(ctx, tx, plan.ID, tasks); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) insertPlannedTasks(ctx context.Context, exec sqlx.ExtContext, planID string, tasks []models.PlannedTask) error {
	now := time.Now().UTC()
	for i := range tasks {
		payload := tasks[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		payload.PlanID = planID
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}

		if _, err := sqlx.NamedExecContext(ctx, exec, `INSERT INTO planned_tasks (id, plan_id, task_id, scheduled_start, scheduled_end, confidence, efficiency, slot_count, reasoning, created_at) VALUES (:id, :plan_id, :task_id, :scheduled_start, :scheduled_end, :confidence, :efficiency, :slot_count, :reasoning, :created_at)`, &payload); err != nil {
			return fmt.Errorf("insert planned task: %w", err)
		}
		tasks[i] = payload
	}
	return nil
}
