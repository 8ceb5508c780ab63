package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/studyflow-api/internal/dto"
	"github.com/noah-isme/studyflow-api/pkg/jobs"
)

const replanJobType = "plan.regenerate"

type planGenerator interface {
	Generate(ctx context.Context, userID string, req dto.GeneratePlanRequest) (*dto.PlanResponse, error)
}

// ReplanConfig tunes the background replanning queue.
type ReplanConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// ReplanService refreshes a user's plan off the request path. Task completion
// handlers enqueue a job here instead of regenerating synchronously.
type ReplanService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewReplanService wires a replan queue over the given plan generator.
func NewReplanService(generator planGenerator, cfg ReplanConfig, logger *zap.Logger) *ReplanService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &ReplanService{logger: logger}
	s.queue = jobs.NewQueue(replanJobType, func(ctx context.Context, job jobs.Job) error {
		userID, ok := job.Payload.(string)
		if !ok {
			logger.Error("replan job with unexpected payload", zap.Any("payload", job.Payload))
			return nil
		}
		_, err := generator.Generate(ctx, userID, dto.GeneratePlanRequest{})
		return err
	}, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *ReplanService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ReplanService) Stop() {
	s.queue.Stop()
}

// TriggerReplan enqueues a plan refresh for the user. Failures are logged and
// dropped; the user can always regenerate explicitly.
func (s *ReplanService) TriggerReplan(userID string) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    replanJobType,
		Payload: userID,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue replan", zap.String("user_id", userID), zap.Error(err))
	}
}
