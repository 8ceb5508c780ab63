package planner

import "time"

// Priority mirrors the task priority tiers used across the API.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TaskType distinguishes academic work, which must land in focused slots,
// from personal tasks, which may not be split.
type TaskType string

const (
	TypeAcademic TaskType = "academic"
	TypePersonal TaskType = "personal"
)

// TimeOfDay is a coarse label derived from a slot's starting hour.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	LateNight TimeOfDay = "late_night"
)

// Task is the planner's view of a task. The engine never mutates tasks; it
// only reads them and emits scheduling decisions.
type Task struct {
	ID               string
	Title            string
	Subject          string
	DueDate          time.Time
	Priority         Priority
	Type             TaskType
	Completed        bool
	CompletedAt      *time.Time
	EstimatedMinutes int
	ActualMinutes    int
	Difficulty       int
}

// Event is a fixed calendar commitment slots must not overlap.
type Event struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

// Preferences carries the user-declared planning knobs.
type Preferences struct {
	AvailableHours        []int
	PreferredSubjects     []string
	StrugglingSubjects    []string
	SessionLengthMinutes  int
	BreakFrequencyMinutes int
	DifficultyComfort     int
}

// Pattern is mined completion history: precomputed productive hours,
// per-subject completion rates, and a 0-1 quality score for the data behind it.
type Pattern struct {
	ProductiveHours        []int
	SubjectCompletionRates map[string]float64
	DataQuality            float64
}

// Window is an hour range [StartHour, EndHour) with an efficiency weight.
// Day restricts the window to one weekday when set.
type Window struct {
	StartHour  int
	EndHour    int
	Efficiency float64
	Day        *time.Weekday
}

// Slot is a concrete one-hour scheduling unit on the planning horizon.
type Slot struct {
	Start      time.Time
	End        time.Time
	Efficiency float64
	TimeOfDay  TimeOfDay
}

// ScheduledTask binds a task to a concrete interval with the planner's
// confidence and a human-readable explanation of the placement.
type ScheduledTask struct {
	Task
	Start      time.Time
	End        time.Time
	Confidence float64
	Efficiency float64
	SlotCount  int
	Reasoning  string
}

// ResolutionKind tags how an overlap between two scheduled tasks was settled.
type ResolutionKind string

const (
	ResolutionReschedule ResolutionKind = "reschedule"
	ResolutionSplit      ResolutionKind = "split"
	ResolutionDefer      ResolutionKind = "defer"
)

// Resolution records one settled overlap. The loser is excluded from the
// final schedule; no replacement slot is computed.
type Resolution struct {
	Kind     ResolutionKind
	WinnerID string
	LoserID  string
	Reason   string
}

// AdjustmentKind tags the advisory suggestion categories.
type AdjustmentKind string

const (
	AdjustBreaks     AdjustmentKind = "break_insertion"
	AdjustSubjects   AdjustmentKind = "subject_rebalance"
	AdjustDifficulty AdjustmentKind = "difficulty_reorder"
	AdjustConflict   AdjustmentKind = "conflict_followup"
)

// Adjustment is a non-binding suggestion about the produced schedule.
type Adjustment struct {
	Kind     AdjustmentKind
	Priority Priority
	Impact   string
	Effort   string
	Message  string
	TaskIDs  []string
}

// Input bundles everything one planning run needs. The engine is a pure
// function of this value. HorizonDays overrides the engine default when
// positive.
type Input struct {
	Tasks       []Task
	History     []Task
	Events      []Event
	Preferences Preferences
	Pattern     *Pattern
	Now         time.Time
	HorizonDays int
}

// Metadata summarises a planning run.
type Metadata struct {
	TotalTasks     int
	ScheduledTasks int
	Conflicts      int
	Efficiency     float64
	Confidence     float64
}

// Result is the full output of one planning run.
type Result struct {
	Schedule    []ScheduledTask
	Adjustments []Adjustment
	Resolutions []Resolution
	Metadata    Metadata
}
