package service

import (
	"context"
	"errors"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

var ErrArchiveDisabled = errors.New("completion archive is disabled")

// PollStats pairs a poll with its answer counters for rendering.
type PollStats struct {
	Poll   *entities.Poll
	Report entities.PollReport
}

// StatsService serves the admin statistics surface.
type StatsService struct {
	stats       StatsRepository
	registry    PollRegistry
	datasets    DatasetRepository
	completions CompletionRepository
}

// NewStatsService creates a StatsService. completions may be nil when the archive is disabled.
func NewStatsService(
	stats StatsRepository,
	registry PollRegistry,
	datasets DatasetRepository,
	completions CompletionRepository,
) *StatsService {
	return &StatsService{
		stats:       stats,
		registry:    registry,
		datasets:    datasets,
		completions: completions,
	}
}

// SavedPolls lists polls that have statistics keys.
func (s *StatsService) SavedPolls(ctx context.Context) ([]string, error) {
	return s.registry.SavedPolls(ctx)
}

func (s *StatsService) TotalAnswers(ctx context.Context) (int64, error) {
	return s.stats.TotalAnswers(ctx)
}

// PollReport returns counters of a poll known to the dataset store.
func (s *StatsService) PollReport(ctx context.Context, pollName string) (*PollStats, error) {
	poll, err := s.datasets.Poll(pollName)
	if err != nil {
		return nil, ErrPollNotFound
	}

	report, err := s.stats.PollReport(ctx, pollName)
	if err != nil {
		return nil, err
	}

	return &PollStats{Poll: poll, Report: report}, nil
}

// ResetCounters drops all answer counters. Poll keys are kept.
func (s *StatsService) ResetCounters(ctx context.Context) (int, error) {
	return s.stats.ResetCounters(ctx)
}

// Completions returns archived completion counts per poll.
func (s *StatsService) Completions(ctx context.Context) ([]entities.CompletionCount, error) {
	if s.completions == nil {
		return nil, ErrArchiveDisabled
	}
	return s.completions.CountByPoll(ctx)
}
