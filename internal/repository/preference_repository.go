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

// PreferenceRepository provides database access for study preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository creates a new instance of PreferenceRepository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByUser returns the preference row for a user.
func (r *PreferenceRepository) FindByUser(ctx context.Context, userID string) (*models.StudyPreference, error) {
	const query = `SELECT id, user_id, available_hours, preferred_subjects, struggling_subjects, session_length_minutes, break_frequency_minutes, difficulty_comfort, created_at, updated_at FROM study_preferences WHERE user_id = $1 LIMIT 1`
	var pref models.StudyPreference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find preferences: %w", err)
	}
	return &pref, nil
}

// Upsert writes the preference row, creating it on first save.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.StudyPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now

	const query = `INSERT INTO study_preferences (id, user_id, available_hours, preferred_subjects, struggling_subjects, session_length_minutes, break_frequency_minutes, difficulty_comfort, created_at, updated_at)
		VALUES (:id, :user_id, :available_hours, :preferred_subjects, :struggling_subjects, :session_length_minutes, :break_frequency_minutes, :difficulty_comfort, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			available_hours = EXCLUDED.available_hours,
			preferred_subjects = EXCLUDED.preferred_subjects,
			struggling_subjects = EXCLUDED.struggling_subjects,
			session_length_minutes = EXCLUDED.session_length_minutes,
			break_frequency_minutes = EXCLUDED.break_frequency_minutes,
			difficulty_comfort = EXCLUDED.difficulty_comfort,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
