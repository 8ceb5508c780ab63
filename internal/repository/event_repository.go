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

// EventRepository provides database access for calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns a user's events, optionally bounded to a time range.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error) {
	query := `SELECT id, user_id, title, start_time, end_time, created_at, updated_at FROM calendar_events WHERE user_id = $1`
	args := []interface{}{filter.UserID}

	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND end_time > $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", len(args)+1)
		args = append(args, filter.To)
	}
	query += " ORDER BY start_time ASC"

	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListBetween returns events overlapping [from, to), the planner's blocked set.
func (r *EventRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error) {
	return r.List(ctx, models.EventFilter{UserID: userID, From: from, To: to})
}

// Create inserts a new calendar event.
func (r *EventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO calendar_events (id, user_id, title, start_time, end_time, created_at, updated_at) VALUES (:id, :user_id, :title, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Delete removes an event permanently.
func (r *EventRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
