package planner

import (
	"time"

	"go.uber.org/zap"
)

const (
	defaultEstimateMinutes = 60
	maxEstimateMinutes     = 480
	maxDifficulty          = 10
)

// Config tunes one Engine instance.
type Config struct {
	HorizonDays int
}

// Engine builds study schedules. It is stateless and safe for concurrent use;
// every Build call is a pure function of its input.
type Engine struct {
	horizonDays int
	logger      *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	horizon := cfg.HorizonDays
	if horizon <= 0 {
		horizon = 7
	}
	return &Engine{horizonDays: horizon, logger: logger}
}

// Build runs the full pipeline: window analysis, slot generation, task
// prioritization, allocation, conflict resolution, adjustment advice, and the
// summary metadata.
func (e *Engine) Build(in Input) Result {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	in.Now = now

	for i := range in.Tasks {
		in.Tasks[i] = normalizeTask(in.Tasks[i])
	}

	horizon := in.HorizonDays
	if horizon <= 0 {
		horizon = e.horizonDays
	}

	windows := analyzeWindows(in)
	slots := generateSlots(windows, in.Events, in.Preferences, now, horizon)
	pending := prioritizeTasks(in.Tasks, in.Preferences, in.History, now)
	allocated, contentions := allocateTasks(pending, slots, in.Preferences)
	schedule, overlaps := resolveConflicts(allocated)
	resolutions := append(contentions, overlaps...)
	adjustments := suggestAdjustments(schedule, resolutions)
	metadata := computeMetadata(in, pending, schedule, resolutions)

	e.logger.Debug("plan built",
		zap.Int("windows", len(windows)),
		zap.Int("slots", len(slots)),
		zap.Int("pending", len(pending)),
		zap.Int("scheduled", len(schedule)),
		zap.Int("conflicts", len(resolutions)),
	)

	return Result{
		Schedule:    schedule,
		Adjustments: adjustments,
		Resolutions: resolutions,
		Metadata:    metadata,
	}
}

// normalizeTask clamps malformed values instead of rejecting the task: a
// missing estimate defaults to one hour, estimates cap at eight hours, and
// difficulty clamps to [0,10].
func normalizeTask(task Task) Task {
	if task.EstimatedMinutes <= 0 {
		task.EstimatedMinutes = defaultEstimateMinutes
	}
	if task.EstimatedMinutes > maxEstimateMinutes {
		task.EstimatedMinutes = maxEstimateMinutes
	}
	if task.Difficulty < 0 {
		task.Difficulty = 0
	}
	if task.Difficulty > maxDifficulty {
		task.Difficulty = maxDifficulty
	}
	if task.Priority != PriorityHigh && task.Priority != PriorityMedium && task.Priority != PriorityLow {
		task.Priority = PriorityMedium
	}
	if task.Type != TypeAcademic && task.Type != TypePersonal {
		task.Type = TypeAcademic
	}
	return task
}
