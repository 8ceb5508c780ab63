package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyflow-api/internal/models"
)

func newTaskMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func taskRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "title", "description", "subject", "due_date", "priority", "task_type", "completed", "completed_at", "estimated_minutes", "actual_minutes", "difficulty", "created_at", "updated_at"}).
		AddRow("task-1", "user-1", "essay", "", "English", now.Add(48*time.Hour), "high", "academic", false, nil, 120, 0, 6, now, now)
}

func TestTaskRepositoryList(t *testing.T) {
	db, mock, cleanup := newTaskMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectQuery("SELECT id, user_id, title").
		WithArgs("user-1").
		WillReturnRows(taskRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	tasks, total, err := repo.List(context.Background(), models.TaskFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryListFiltersCompletion(t *testing.T) {
	db, mock, cleanup := newTaskMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)
	completed := false

	mock.ExpectQuery("SELECT id, user_id, title").
		WithArgs("user-1", false).
		WillReturnRows(taskRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks`).
		WithArgs("user-1", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.TaskFilter{UserID: "user-1", Completed: &completed})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTaskMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("INSERT INTO tasks").
		WillReturnResult(sqlmock.NewResult(1, 1))

	task := &models.Task{UserID: "user-1", Title: "essay", Priority: models.PriorityHigh, Type: models.TaskTypeAcademic, DueDate: time.Now().Add(48 * time.Hour), EstimatedMinutes: 120}
	err := repo.Create(context.Background(), task)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryMarkCompleted(t *testing.T) {
	db, mock, cleanup := newTaskMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)
	completedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE tasks SET completed = TRUE").
		WithArgs("task-1", "user-1", completedAt, 90).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkCompleted(context.Background(), "user-1", "task-1", completedAt, 90)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryMarkCompletedAlreadyDone(t *testing.T) {
	db, mock, cleanup := newTaskMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("UPDATE tasks SET completed = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkCompleted(context.Background(), "user-1", "task-1", time.Now(), 90)
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestTaskRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newTaskMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("DELETE FROM tasks").
		WithArgs("task-9", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user-1", "task-9")
	assert.Equal(t, sql.ErrNoRows, err)
}
