package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studyflow-api/internal/dto"
	"github.com/noah-isme/studyflow-api/internal/models"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
)

type preferenceRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.StudyPreference, error)
	Upsert(ctx context.Context, pref *models.StudyPreference) error
}

// PreferenceService provides study preference use cases.
type PreferenceService struct {
	repo      preferenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(repo preferenceRepository, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PreferenceService{repo: repo, validator: validate, logger: logger}
}

// Get returns the user's stored preferences, or the defaults when nothing has
// been saved yet.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*dto.PreferenceResponse, error) {
	pref, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultPreferenceResponse(), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return toPreferenceResponse(pref)
}

// Update replaces the user's preferences.
func (s *PreferenceService) Update(ctx context.Context, userID string, req dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}

	availableHours, err := json.Marshal(emptyIfNilInts(req.AvailableHours))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode available hours")
	}
	preferred, err := json.Marshal(emptyIfNilStrings(req.PreferredSubjects))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode preferred subjects")
	}
	struggling, err := json.Marshal(emptyIfNilStrings(req.StrugglingSubjects))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode struggling subjects")
	}

	pref := &models.StudyPreference{
		UserID:                userID,
		AvailableHours:        availableHours,
		PreferredSubjects:     preferred,
		StrugglingSubjects:    struggling,
		SessionLengthMinutes:  req.SessionLengthMinutes,
		BreakFrequencyMinutes: req.BreakFrequencyMinutes,
		DifficultyComfort:     req.DifficultyComfort,
	}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preferences")
	}

	return toPreferenceResponse(pref)
}

func toPreferenceResponse(pref *models.StudyPreference) (*dto.PreferenceResponse, error) {
	resp := &dto.PreferenceResponse{
		SessionLengthMinutes:  pref.SessionLengthMinutes,
		BreakFrequencyMinutes: pref.BreakFrequencyMinutes,
		DifficultyComfort:     pref.DifficultyComfort,
	}
	if len(pref.AvailableHours) > 0 {
		if err := json.Unmarshal(pref.AvailableHours, &resp.AvailableHours); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt available hours")
		}
	}
	if len(pref.PreferredSubjects) > 0 {
		if err := json.Unmarshal(pref.PreferredSubjects, &resp.PreferredSubjects); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt preferred subjects")
		}
	}
	if len(pref.StrugglingSubjects) > 0 {
		if err := json.Unmarshal(pref.StrugglingSubjects, &resp.StrugglingSubjects); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt struggling subjects")
		}
	}
	if resp.AvailableHours == nil {
		resp.AvailableHours = []int{}
	}
	if resp.PreferredSubjects == nil {
		resp.PreferredSubjects = []string{}
	}
	if resp.StrugglingSubjects == nil {
		resp.StrugglingSubjects = []string{}
	}
	return resp, nil
}

func defaultPreferenceResponse() *dto.PreferenceResponse {
	return &dto.PreferenceResponse{
		AvailableHours:        []int{},
		PreferredSubjects:     []string{},
		StrugglingSubjects:    []string{},
		SessionLengthMinutes:  60,
		BreakFrequencyMinutes: 60,
		DifficultyComfort:     5,
	}
}

func emptyIfNilInts(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}

func emptyIfNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
