package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyflow-api/internal/dto"
	"github.com/noah-isme/studyflow-api/internal/models"
	"github.com/noah-isme/studyflow-api/internal/planner"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
)

type stubPlanTaskRepo struct {
	open    []models.Task
	history []models.Task
}

func (r *stubPlanTaskRepo) ListOpen(_ context.Context, _ string) ([]models.Task, error) {
	return r.open, nil
}

func (r *stubPlanTaskRepo) ListCompletedSince(_ context.Context, _ string, _ time.Time) ([]models.Task, error) {
	return r.history, nil
}

type stubPlanEventRepo struct {
	events []models.CalendarEvent
}

func (r *stubPlanEventRepo) ListBetween(_ context.Context, _ string, _, _ time.Time) ([]models.CalendarEvent, error) {
	return r.events, nil
}

type stubPlanPrefRepo struct {
	pref *models.StudyPreference
}

func (r *stubPlanPrefRepo) FindByUser(_ context.Context, _ string) (*models.StudyPreference, error) {
	if r.pref == nil {
		return nil, sql.ErrNoRows
	}
	return r.pref, nil
}

type stubPlanRepo struct {
	active *models.StudyPlan
	saved  *models.StudyPlan
	rows   []models.PlannedTask
}

func (r *stubPlanRepo) FindActive(_ context.Context, _ string) (*models.StudyPlan, error) {
	if r.active == nil {
		return nil, sql.ErrNoRows
	}
	return r.active, nil
}

func (r *stubPlanRepo) SaveActive(_ context.Context, plan *models.StudyPlan, tasks []models.PlannedTask) error {
	plan.ID = "plan-1"
	plan.Status = models.StudyPlanStatusActive
	r.saved = plan
	r.rows = tasks
	return nil
}

type stubPlanCache struct {
	store       map[string][]byte
	invalidated []string
	hits        int
}

func (c *stubPlanCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	// The service only ever caches PlanResponse payloads.
	if c.store == nil {
		return false, nil
	}
	if _, ok := c.store[key]; !ok {
		return false, nil
	}
	c.hits++
	if resp, ok := dest.(*dto.PlanResponse); ok {
		resp.ID = "cached-plan"
	}
	return true, nil
}

func (c *stubPlanCache) Set(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = []byte("x")
	return nil
}

func (c *stubPlanCache) Invalidate(_ context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	delete(c.store, pattern)
	return nil
}

func newPlanServiceFixture(tasks *stubPlanTaskRepo, plans *stubPlanRepo, cache *stubPlanCache) *PlanService {
	builder := planner.New(planner.Config{HorizonDays: 7}, nil)
	return NewPlanService(
		tasks,
		&stubPlanEventRepo{},
		&stubPlanPrefRepo{},
		plans,
		cache,
		builder,
		nil,
		nil,
		nil,
		PlanConfig{HorizonDays: 7, CacheEnabled: true, CacheTTL: 10 * time.Minute},
	)
}

func openTaskFixture(id, title string) models.Task {
	return models.Task{
		ID:               id,
		UserID:           "user-1",
		Title:            title,
		Subject:          "Math",
		DueDate:          time.Now().UTC().Add(48 * time.Hour),
		Priority:         models.PriorityHigh,
		Type:             models.TaskTypeAcademic,
		EstimatedMinutes: 60,
	}
}

func TestPlanServiceGeneratePersistsAndInvalidates(t *testing.T) {
	tasks := &stubPlanTaskRepo{open: []models.Task{openTaskFixture("task-1", "calculus set")}}
	plans := &stubPlanRepo{}
	cache := &stubPlanCache{}
	service := newPlanServiceFixture(tasks, plans, cache)

	resp, err := service.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{})
	require.NoError(t, err)
	require.NotNil(t, plans.saved)
	assert.Equal(t, "plan-1", resp.ID)
	assert.Equal(t, 1, resp.TotalTasks)
	assert.Len(t, plans.rows, resp.ScheduledTasks)
	assert.Equal(t, []string{"plans:current:user-1"}, cache.invalidated)

	require.NotEmpty(t, resp.Schedule)
	assert.Equal(t, "calculus set", resp.Schedule[0].Title)
	assert.Equal(t, "task-1", resp.Schedule[0].TaskID)
}

func TestPlanServiceGenerateHandlesEmptyBacklog(t *testing.T) {
	service := newPlanServiceFixture(&stubPlanTaskRepo{}, &stubPlanRepo{}, &stubPlanCache{})

	resp, err := service.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalTasks)
	assert.Empty(t, resp.Schedule)
}

func TestPlanServiceCurrentReadsThroughCache(t *testing.T) {
	plans := &stubPlanRepo{active: &models.StudyPlan{
		ID:     "plan-1",
		UserID: "user-1",
		Status: models.StudyPlanStatusActive,
		Meta:   []byte(`{"schedule":[],"adjustments":[],"resolutions":[]}`),
	}}
	cache := &stubPlanCache{}
	service := newPlanServiceFixture(&stubPlanTaskRepo{}, plans, cache)

	resp, cached, err := service.Current(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "plan-1", resp.ID)

	resp, cached, err = service.Current(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "cached-plan", resp.ID)
	assert.Equal(t, 1, cache.hits)
}

func TestPlanServiceCurrentWithoutPlan(t *testing.T) {
	service := newPlanServiceFixture(&stubPlanTaskRepo{}, &stubPlanRepo{}, &stubPlanCache{})

	_, _, err := service.Current(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMinePatternsTopHoursNeedHistory(t *testing.T) {
	done := time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)
	few := []models.Task{{Subject: "Math", Completed: true, CompletedAt: &done}}

	pattern := minePatterns(few)
	require.NotNil(t, pattern)
	assert.Empty(t, pattern.ProductiveHours, "fewer than ten completions yield no productive hours")
	assert.Equal(t, 1.0, pattern.SubjectCompletionRates["Math"])

	var many []models.Task
	for i := 0; i < 12; i++ {
		ts := time.Date(2026, 1, 5+i%3, 20, 0, 0, 0, time.UTC)
		many = append(many, models.Task{Subject: "Math", Completed: true, CompletedAt: &ts})
	}
	pattern = minePatterns(many)
	require.NotNil(t, pattern)
	assert.Equal(t, []int{20}, pattern.ProductiveHours)
	assert.InDelta(t, 12.0/50.0, pattern.DataQuality, 0.001)
}

func TestMinePatternsEmptyHistory(t *testing.T) {
	assert.Nil(t, minePatterns(nil))
}
