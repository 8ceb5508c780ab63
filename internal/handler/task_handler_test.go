package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyflow-api/internal/dto"
	"github.com/noah-isme/studyflow-api/internal/models"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
)

type taskManagerMock struct {
	capturedUser   string
	capturedID     string
	capturedQuery  dto.TaskQuery
	capturedCreate dto.CreateTaskRequest
	tasks          []dto.TaskResponse
	pagination     *models.Pagination
	task           *dto.TaskResponse
	err            error
}

func (m *taskManagerMock) List(_ context.Context, userID string, query dto.TaskQuery) ([]dto.TaskResponse, *models.Pagination, error) {
	m.capturedUser = userID
	m.capturedQuery = query
	return m.tasks, m.pagination, m.err
}

func (m *taskManagerMock) Get(_ context.Context, userID, id string) (*dto.TaskResponse, error) {
	m.capturedUser = userID
	m.capturedID = id
	return m.task, m.err
}

func (m *taskManagerMock) Create(_ context.Context, userID string, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	m.capturedUser = userID
	m.capturedCreate = req
	return m.task, m.err
}

func (m *taskManagerMock) Update(_ context.Context, userID, id string, _ dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	m.capturedUser = userID
	m.capturedID = id
	return m.task, m.err
}

func (m *taskManagerMock) Complete(_ context.Context, userID, id string, _ dto.CompleteTaskRequest) (*dto.TaskResponse, error) {
	m.capturedUser = userID
	m.capturedID = id
	return m.task, m.err
}

func (m *taskManagerMock) Delete(_ context.Context, userID, id string) error {
	m.capturedUser = userID
	m.capturedID = id
	return m.err
}

func taskFixture() *dto.TaskResponse {
	return &dto.TaskResponse{
		ID:       "task-1",
		Title:    "calculus set",
		Subject:  "Math",
		DueDate:  time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
		Priority: string(models.PriorityHigh),
		Type:     string(models.TaskTypeAcademic),
	}
}

func TestTaskHandlerListBindsQuery(t *testing.T) {
	mockSvc := &taskManagerMock{
		tasks:      []dto.TaskResponse{*taskFixture()},
		pagination: &models.Pagination{Page: 2, PageSize: 10, TotalCount: 11},
	}
	handler := &TaskHandler{service: mockSvc}
	router := authenticatedRouter("user-1")
	router.GET("/tasks", handler.List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/tasks?subject=Math&priority=high&page=2&pageSize=10", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", mockSvc.capturedUser)
	require.Equal(t, "Math", mockSvc.capturedQuery.Subject)
	require.Equal(t, "high", mockSvc.capturedQuery.Priority)
	require.Equal(t, 2, mockSvc.capturedQuery.Page)

	var envelope struct {
		Data       []dto.TaskResponse `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.NotNil(t, envelope.Pagination)
	require.Equal(t, 11, envelope.Pagination.TotalCount)
}

func TestTaskHandlerCreate(t *testing.T) {
	mockSvc := &taskManagerMock{task: taskFixture()}
	handler := &TaskHandler{service: mockSvc}
	router := authenticatedRouter("user-1")
	router.POST("/tasks", handler.Create)

	payload := []byte(`{"title":"calculus set","subject":"Math","dueDate":"2026-01-09T00:00:00Z","priority":"high","type":"academic","estimatedMinutes":120}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "calculus set", mockSvc.capturedCreate.Title)
	require.Equal(t, 120, mockSvc.capturedCreate.EstimatedMinutes)
}

func TestTaskHandlerCreateMalformedBody(t *testing.T) {
	handler := &TaskHandler{service: &taskManagerMock{}}
	router := authenticatedRouter("user-1")
	router.POST("/tasks", handler.Create)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/tasks", bytes.NewReader([]byte(`{"title":`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandlerCompleteWithoutBody(t *testing.T) {
	mockSvc := &taskManagerMock{task: taskFixture()}
	handler := &TaskHandler{service: mockSvc}
	router := authenticatedRouter("user-1")
	router.POST("/tasks/:id/complete", handler.Complete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/tasks/task-1/complete", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "task-1", mockSvc.capturedID)
}

func TestTaskHandlerCompleteAlreadyDone(t *testing.T) {
	mockSvc := &taskManagerMock{err: appErrors.Clone(appErrors.ErrPreconditionFailed, "task is already completed")}
	handler := &TaskHandler{service: mockSvc}
	router := authenticatedRouter("user-1")
	router.POST("/tasks/:id/complete", handler.Complete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/tasks/task-1/complete", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, appErrors.ErrPreconditionFailed.Status, w.Code)
}

func TestTaskHandlerDeleteNotFound(t *testing.T) {
	mockSvc := &taskManagerMock{err: appErrors.Clone(appErrors.ErrNotFound, "task not found")}
	handler := &TaskHandler{service: mockSvc}
	router := authenticatedRouter("user-1")
	router.DELETE("/tasks/:id", handler.Delete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/tasks/task-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "task-1", mockSvc.capturedID)
}
