package dto

// UpdatePreferenceRequest replaces the user's planning preferences.
type UpdatePreferenceRequest struct {
	AvailableHours        []int    `json:"availableHours" validate:"omitempty,dive,min=0,max=23"`
	PreferredSubjects     []string `json:"preferredSubjects" validate:"omitempty,dive,max=100"`
	StrugglingSubjects    []string `json:"strugglingSubjects" validate:"omitempty,dive,max=100"`
	SessionLengthMinutes  int      `json:"sessionLengthMinutes" validate:"omitempty,min=15,max=240"`
	BreakFrequencyMinutes int      `json:"breakFrequencyMinutes" validate:"omitempty,min=15,max=180"`
	DifficultyComfort     int      `json:"difficultyComfort" validate:"omitempty,min=1,max=10"`
}

// PreferenceResponse is the stored preference set returned by the API.
type PreferenceResponse struct {
	AvailableHours        []int    `json:"availableHours"`
	PreferredSubjects     []string `json:"preferredSubjects"`
	StrugglingSubjects    []string `json:"strugglingSubjects"`
	SessionLengthMinutes  int      `json:"sessionLengthMinutes"`
	BreakFrequencyMinutes int      `json:"breakFrequencyMinutes"`
	DifficultyComfort     int      `json:"difficultyComfort"`
}
