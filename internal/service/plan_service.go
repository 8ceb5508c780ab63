package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studyflow-api/internal/dto"
	"github.com/noah-isme/studyflow-api/internal/models"
	"github.com/noah-isme/studyflow-api/internal/planner"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
)

const (
	patternHistoryWindow   = 90 * 24 * time.Hour
	patternMinCompletions  = 10
	patternTopHours        = 3
	patternFullHistorySize = 50
)

type planTaskRepository interface {
	ListOpen(ctx context.Context, userID string) ([]models.Task, error)
	ListCompletedSince(ctx context.Context, userID string, since time.Time) ([]models.Task, error)
}

type planEventRepository interface {
	ListBetween(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error)
}

type planPreferenceRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.StudyPreference, error)
}

type planRepository interface {
	FindActive(ctx context.Context, userID string) (*models.StudyPlan, error)
	SaveActive(ctx context.Context, plan *models.StudyPlan, tasks []models.PlannedTask) error
}

type planCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type scheduleBuilder interface {
	Build(in planner.Input) planner.Result
}

// PlanConfig tunes planning behaviour.
type PlanConfig struct {
	HorizonDays  int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// PlanService orchestrates planning runs: it gathers the engine's inputs,
// persists the produced plan, and serves the cached current plan.
type PlanService struct {
	tasks     planTaskRepository
	events    planEventRepository
	prefs     planPreferenceRepository
	plans     planRepository
	cache     planCache
	builder   scheduleBuilder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    PlanConfig
}

// NewPlanService constructs a PlanService. The cache may be nil.
func NewPlanService(
	tasks planTaskRepository,
	events planEventRepository,
	prefs planPreferenceRepository,
	plans planRepository,
	cache planCache,
	builder scheduleBuilder,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	config PlanConfig,
) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.HorizonDays <= 0 {
		config.HorizonDays = 7
	}
	return &PlanService{
		tasks:     tasks,
		events:    events,
		prefs:     prefs,
		plans:     plans,
		cache:     cache,
		builder:   builder,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// planMeta is the JSON document stored alongside a plan row. It carries the
// denormalised schedule plus the advisory output, so reads never need to
// re-join task rows.
type planMeta struct {
	Schedule    []dto.ScheduledTaskResponse `json:"schedule"`
	Adjustments []dto.AdjustmentResponse    `json:"adjustments"`
	Resolutions []dto.ResolutionResponse    `json:"resolutions"`
}

// Generate runs the planning pipeline over the user's open tasks and persists
// the result as the new active plan.
func (s *PlanService) Generate(ctx context.Context, userID string, req dto.GeneratePlanRequest) (*dto.PlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan request")
	}

	horizonDays := req.HorizonDays
	if horizonDays <= 0 {
		horizonDays = s.config.HorizonDays
	}
	now := time.Now().UTC()
	horizonEnd := now.AddDate(0, 0, horizonDays)

	openTasks, err := s.tasks.ListOpen(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load open tasks")
	}
	history, err := s.tasks.ListCompletedSince(ctx, userID, now.Add(-patternHistoryWindow))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completion history")
	}
	events, err := s.events.ListBetween(ctx, userID, now, horizonEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar events")
	}

	preferences, err := s.loadPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	input := planner.Input{
		Tasks:       toPlannerTasks(openTasks),
		History:     toPlannerTasks(history),
		Events:      toPlannerEvents(events),
		Preferences: preferences,
		Pattern:     minePatterns(history),
		Now:         now,
		HorizonDays: horizonDays,
	}

	buildStart := time.Now()
	result := s.builder.Build(input)
	s.metrics.ObservePlanGeneration(time.Since(buildStart))

	taskIndex := make(map[string]models.Task, len(openTasks))
	for _, task := range openTasks {
		taskIndex[task.ID] = task
	}

	meta := planMeta{
		Schedule:    make([]dto.ScheduledTaskResponse, 0, len(result.Schedule)),
		Adjustments: make([]dto.AdjustmentResponse, 0, len(result.Adjustments)),
		Resolutions: make([]dto.ResolutionResponse, 0, len(result.Resolutions)),
	}
	plannedRows := make([]models.PlannedTask, 0, len(result.Schedule))
	for _, item := range result.Schedule {
		source := taskIndex[item.ID]
		meta.Schedule = append(meta.Schedule, dto.ScheduledTaskResponse{
			TaskID:         item.ID,
			Title:          source.Title,
			Subject:        source.Subject,
			Priority:       string(item.Priority),
			ScheduledStart: item.Start,
			ScheduledEnd:   item.End,
			Confidence:     item.Confidence,
			Efficiency:     item.Efficiency,
			SlotCount:      item.SlotCount,
			Reasoning:      item.Reasoning,
		})
		plannedRows = append(plannedRows, models.PlannedTask{
			TaskID:         item.ID,
			ScheduledStart: item.Start,
			ScheduledEnd:   item.End,
			Confidence:     item.Confidence,
			Efficiency:     item.Efficiency,
			SlotCount:      item.SlotCount,
			Reasoning:      item.Reasoning,
		})
	}
	for _, adj := range result.Adjustments {
		meta.Adjustments = append(meta.Adjustments, dto.AdjustmentResponse{
			Kind:     string(adj.Kind),
			Priority: string(adj.Priority),
			Impact:   adj.Impact,
			Effort:   adj.Effort,
			Message:  adj.Message,
			TaskIDs:  adj.TaskIDs,
		})
	}
	for _, res := range result.Resolutions {
		meta.Resolutions = append(meta.Resolutions, dto.ResolutionResponse{
			Kind:     string(res.Kind),
			WinnerID: res.WinnerID,
			LoserID:  res.LoserID,
			Reason:   res.Reason,
		})
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode plan meta")
	}

	plan := &models.StudyPlan{
		UserID:         userID,
		HorizonStart:   now,
		HorizonEnd:     horizonEnd,
		TotalTasks:     result.Metadata.TotalTasks,
		ScheduledTasks: result.Metadata.ScheduledTasks,
		Conflicts:      result.Metadata.Conflicts,
		Efficiency:     result.Metadata.Efficiency,
		Confidence:     result.Metadata.Confidence,
		Meta:           metaJSON,
		CreatedAt:      now,
	}
	if err := s.plans.SaveActive(ctx, plan, plannedRows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist plan")
	}

	s.invalidateCache(ctx, userID)

	s.logger.Info("plan generated",
		zap.String("user_id", userID),
		zap.String("plan_id", plan.ID),
		zap.Int("scheduled", plan.ScheduledTasks),
		zap.Int("conflicts", plan.Conflicts),
	)

	return planToResponse(plan, meta), nil
}

// Current returns the user's active plan, served from cache when possible.
// The second return value reports whether the payload came from cache.
func (s *PlanService) Current(ctx context.Context, userID string) (*dto.PlanResponse, bool, error) {
	key := planCacheKey(userID)
	if s.cacheUsable() {
		var cached dto.PlanResponse
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	plan, err := s.plans.FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no active plan; generate one first")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}

	var meta planMeta
	if len(plan.Meta) > 0 {
		if err := json.Unmarshal(plan.Meta, &meta); err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt plan meta")
		}
	}

	resp := planToResponse(plan, meta)
	if s.cacheUsable() {
		if err := s.cache.Set(ctx, key, resp, s.config.CacheTTL); err != nil {
			s.logger.Warn("plan cache write failed", zap.Error(err))
		}
	}
	return resp, false, nil
}

func (s *PlanService) cacheUsable() bool {
	return s.cache != nil && s.config.CacheEnabled
}

func (s *PlanService) invalidateCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, planCacheKey(userID)); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.Error(err))
	}
}

func (s *PlanService) loadPreferences(ctx context.Context, userID string) (planner.Preferences, error) {
	pref, err := s.prefs.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return planner.Preferences{}, nil
		}
		return planner.Preferences{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}

	out := planner.Preferences{
		SessionLengthMinutes:  pref.SessionLengthMinutes,
		BreakFrequencyMinutes: pref.BreakFrequencyMinutes,
		DifficultyComfort:     pref.DifficultyComfort,
	}
	if len(pref.AvailableHours) > 0 {
		if err := json.Unmarshal(pref.AvailableHours, &out.AvailableHours); err != nil {
			s.logger.Warn("corrupt available hours, planning without them", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if len(pref.PreferredSubjects) > 0 {
		if err := json.Unmarshal(pref.PreferredSubjects, &out.PreferredSubjects); err != nil {
			s.logger.Warn("corrupt preferred subjects", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if len(pref.StrugglingSubjects) > 0 {
		if err := json.Unmarshal(pref.StrugglingSubjects, &out.StrugglingSubjects); err != nil {
			s.logger.Warn("corrupt struggling subjects", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return out, nil
}

// minePatterns derives productivity patterns from completion history: the
// top completion hours, per-subject completion rates, and a quality score
// that grows with the amount of history behind the numbers.
func minePatterns(history []models.Task) *planner.Pattern {
	if len(history) == 0 {
		return nil
	}

	hourCounts := make(map[int]int)
	completions := 0
	subjectTotals := make(map[string]int)
	subjectDone := make(map[string]int)
	for _, task := range history {
		if task.Subject != "" {
			subjectTotals[task.Subject]++
			if task.Completed {
				subjectDone[task.Subject]++
			}
		}
		if task.Completed && task.CompletedAt != nil {
			hourCounts[task.CompletedAt.Hour()]++
			completions++
		}
	}

	pattern := &planner.Pattern{
		SubjectCompletionRates: make(map[string]float64, len(subjectTotals)),
		DataQuality:            minFloat(1, float64(len(history))/patternFullHistorySize),
	}
	for subject, total := range subjectTotals {
		pattern.SubjectCompletionRates[subject] = float64(subjectDone[subject]) / float64(total)
	}

	if completions >= patternMinCompletions {
		type hourCount struct {
			hour  int
			count int
		}
		counts := make([]hourCount, 0, len(hourCounts))
		for hour, count := range hourCounts {
			counts = append(counts, hourCount{hour: hour, count: count})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count == counts[j].count {
				return counts[i].hour < counts[j].hour
			}
			return counts[i].count > counts[j].count
		})
		for i := 0; i < len(counts) && i < patternTopHours; i++ {
			pattern.ProductiveHours = append(pattern.ProductiveHours, counts[i].hour)
		}
	}
	return pattern
}

func toPlannerTasks(tasks []models.Task) []planner.Task {
	out := make([]planner.Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, planner.Task{
			ID:               task.ID,
			Title:            task.Title,
			Subject:          task.Subject,
			DueDate:          task.DueDate,
			Priority:         planner.Priority(task.Priority),
			Type:             planner.TaskType(task.Type),
			Completed:        task.Completed,
			CompletedAt:      task.CompletedAt,
			EstimatedMinutes: task.EstimatedMinutes,
			ActualMinutes:    task.ActualMinutes,
			Difficulty:       task.Difficulty,
		})
	}
	return out
}

func toPlannerEvents(events []models.CalendarEvent) []planner.Event {
	out := make([]planner.Event, 0, len(events))
	for _, event := range events {
		out = append(out, planner.Event{
			ID:    event.ID,
			Title: event.Title,
			Start: event.StartTime,
			End:   event.EndTime,
		})
	}
	return out
}

func planToResponse(plan *models.StudyPlan, meta planMeta) *dto.PlanResponse {
	schedule := meta.Schedule
	if schedule == nil {
		schedule = []dto.ScheduledTaskResponse{}
	}
	adjustments := meta.Adjustments
	if adjustments == nil {
		adjustments = []dto.AdjustmentResponse{}
	}
	resolutions := meta.Resolutions
	if resolutions == nil {
		resolutions = []dto.ResolutionResponse{}
	}
	return &dto.PlanResponse{
		ID:             plan.ID,
		HorizonStart:   plan.HorizonStart,
		HorizonEnd:     plan.HorizonEnd,
		Status:         string(plan.Status),
		Schedule:       schedule,
		Adjustments:    adjustments,
		Resolutions:    resolutions,
		TotalTasks:     plan.TotalTasks,
		ScheduledTasks: plan.ScheduledTasks,
		Conflicts:      plan.Conflicts,
		Efficiency:     plan.Efficiency,
		Confidence:     plan.Confidence,
		CreatedAt:      plan.CreatedAt,
	}
}

func planCacheKey(userID string) string {
	return fmt.Sprintf("plans:current:%s", userID)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
