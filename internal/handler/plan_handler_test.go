package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyflow-api/internal/dto"
	internalmiddleware "github.com/noah-isme/studyflow-api/internal/middleware"
	"github.com/noah-isme/studyflow-api/internal/models"
	"github.com/noah-isme/studyflow-api/internal/service"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
)

type planManagerMock struct {
	capturedUser string
	capturedReq  dto.GeneratePlanRequest
	plan         *dto.PlanResponse
	cached       bool
	err          error
}

func (m *planManagerMock) Generate(_ context.Context, userID string, req dto.GeneratePlanRequest) (*dto.PlanResponse, error) {
	m.capturedUser = userID
	m.capturedReq = req
	return m.plan, m.err
}

func (m *planManagerMock) Current(_ context.Context, userID string) (*dto.PlanResponse, bool, error) {
	m.capturedUser = userID
	return m.plan, m.cached, m.err
}

type planExporterMock struct {
	capturedFormat service.ExportFormat
	payload        *service.ExportPayload
	err            error
}

func (m *planExporterMock) ExportCurrent(_ context.Context, _ string, format service.ExportFormat) (*service.ExportPayload, error) {
	m.capturedFormat = format
	return m.payload, m.err
}

func planFixture() *dto.PlanResponse {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return &dto.PlanResponse{
		ID:           "plan-1",
		HorizonStart: start,
		HorizonEnd:   start.AddDate(0, 0, 7),
		Status:       string(models.StudyPlanStatusActive),
		Schedule:     []dto.ScheduledTaskResponse{{TaskID: "task-1", Title: "calculus set"}},
		TotalTasks:   1,
	}
}

func authenticatedRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: userID})
		c.Next()
	})
	return router
}

func TestPlanHandlerGenerate(t *testing.T) {
	mockSvc := &planManagerMock{plan: planFixture()}
	handler := &PlanHandler{plans: mockSvc}
	router := authenticatedRouter("user-1")
	router.POST("/plans/generate", handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/plans/generate", bytes.NewReader([]byte(`{"horizonDays":5}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "user-1", mockSvc.capturedUser)
	require.Equal(t, 5, mockSvc.capturedReq.HorizonDays)
}

func TestPlanHandlerGenerateEmptyBody(t *testing.T) {
	mockSvc := &planManagerMock{plan: planFixture()}
	handler := &PlanHandler{plans: mockSvc}
	router := authenticatedRouter("user-1")
	router.POST("/plans/generate", handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/plans/generate", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 0, mockSvc.capturedReq.HorizonDays)
}

func TestPlanHandlerGenerateMalformedBody(t *testing.T) {
	handler := &PlanHandler{plans: &planManagerMock{plan: planFixture()}}
	router := authenticatedRouter("user-1")
	router.POST("/plans/generate", handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/plans/generate", bytes.NewReader([]byte(`{"horizonDays":`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanHandlerCurrentIncludesCacheMeta(t *testing.T) {
	mockSvc := &planManagerMock{plan: planFixture(), cached: true}
	handler := &PlanHandler{plans: mockSvc}
	router := authenticatedRouter("user-1")
	router.Use(internalmiddleware.WithResponseMeta())
	router.GET("/plans/current", handler.Current)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/plans/current", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.PlanResponse       `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "plan-1", envelope.Data.ID)
	require.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestPlanHandlerCurrentNotFound(t *testing.T) {
	mockSvc := &planManagerMock{err: appErrors.Clone(appErrors.ErrNotFound, "no active plan")}
	handler := &PlanHandler{plans: mockSvc}
	router := authenticatedRouter("user-1")
	router.GET("/plans/current", handler.Current)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/plans/current", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanHandlerExport(t *testing.T) {
	mockExporter := &planExporterMock{payload: &service.ExportPayload{
		Filename:    "study-plan-2026-01-05.csv",
		ContentType: "text/csv",
		Data:        []byte("Day,Start,End\n"),
	}}
	handler := &PlanHandler{exporter: mockExporter}
	router := authenticatedRouter("user-1")
	router.GET("/plans/current/export", handler.Export)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/plans/current/export?format=csv", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, service.ExportFormatCSV, mockExporter.capturedFormat)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "study-plan-2026-01-05.csv")
}

func TestPlanHandlerExportUnknownFormat(t *testing.T) {
	handler := &PlanHandler{exporter: &planExporterMock{}}
	router := authenticatedRouter("user-1")
	router.GET("/plans/current/export", handler.Export)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/plans/current/export?format=xlsx", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
