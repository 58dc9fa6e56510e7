package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
	"github.com/aliskhannn/selfaudit-bot/internal/service"
)

// Bot is the part of the Telegram API the handler talks to.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type PollService interface {
	Reset(ctx context.Context, userID int64) error
	Start(ctx context.Context, userID int64, pollName string) (*entities.Poll, service.Step, error)
	Next(ctx context.Context, userID int64) (service.Step, error)
	Answer(ctx context.Context, userID int64, optionIDs []int) (service.AnswerResult, error)
}

type StatsService interface {
	SavedPolls(ctx context.Context) ([]string, error)
	TotalAnswers(ctx context.Context) (int64, error)
	PollReport(ctx context.Context, pollName string) (*service.PollStats, error)
	Completions(ctx context.Context) ([]entities.CompletionCount, error)
}

type Catalog interface {
	Sections() []entities.Section
	Section(title string) (entities.Section, bool)
	Poll(name string) (*entities.Poll, error)
	EmergencyTitle() string
	Articles() []entities.Article
	Article(title string) (entities.Article, error)
}

type AccessPolicy interface {
	IsAdmin(username string) bool
}
