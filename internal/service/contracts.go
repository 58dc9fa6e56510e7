package service

import (
	"context"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

type SessionRepository interface {
	Get(ctx context.Context, userID int64) (*entities.Session, error)
	Reset(ctx context.Context, s *entities.Session) error
	SetCurrentPoll(ctx context.Context, s *entities.Session, name string) error
	SetPollLevel(ctx context.Context, s *entities.Session, level int) error
	SetPollOptions(ctx context.Context, s *entities.Session, options []string) error
	AppendAnswer(ctx context.Context, s *entities.Session, level, answer int) error
	IncrementCorrect(ctx context.Context, s *entities.Session) error
}

type DatasetRepository interface {
	Poll(name string) (*entities.Poll, error)
}

type StatsRepository interface {
	RecordAnswer(ctx context.Context, pollName string, question, answer int) error
	PollReport(ctx context.Context, pollName string) (entities.PollReport, error)
	TotalAnswers(ctx context.Context) (int64, error)
	ResetCounters(ctx context.Context) (int, error)
}

type PollRegistry interface {
	SavedPolls(ctx context.Context) ([]string, error)
}

// CompletionRepository archives finished polls.
type CompletionRepository interface {
	Record(ctx context.Context, c entities.Completion) error
	CountByPoll(ctx context.Context) ([]entities.CompletionCount, error)
}
