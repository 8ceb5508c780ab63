package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StudyPreference captures per-user planning preferences. Array-valued fields
// are stored as JSON columns, mirroring how the row is edited as one document.
type StudyPreference struct {
	ID                    string         `db:"id" json:"id"`
	UserID                string         `db:"user_id" json:"user_id"`
	AvailableHours        types.JSONText `db:"available_hours" json:"available_hours"`
	PreferredSubjects     types.JSONText `db:"preferred_subjects" json:"preferred_subjects"`
	StrugglingSubjects    types.JSONText `db:"struggling_subjects" json:"struggling_subjects"`
	SessionLengthMinutes  int            `db:"session_length_minutes" json:"session_length_minutes"`
	BreakFrequencyMinutes int            `db:"break_frequency_minutes" json:"break_frequency_minutes"`
	DifficultyComfort     int            `db:"difficulty_comfort" json:"difficulty_comfort"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}
