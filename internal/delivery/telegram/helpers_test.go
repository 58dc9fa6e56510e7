package telegram

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/selfaudit-bot/internal/repository"
	"github.com/aliskhannn/selfaudit-bot/internal/service"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// take returns everything sent so far and forgets it.
func (b *fakeBot) take() []tgbotapi.Chattable {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.sent
	b.sent = nil
	return out
}

type adminList []string

func (a adminList) IsAdmin(username string) bool {
	for _, u := range a {
		if strings.EqualFold(u, username) {
			return true
		}
	}
	return false
}

type testEnv struct {
	h     *Handler
	bot   *fakeBot
	mr    *miniredis.Miniredis
	stats *service.StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	catalog, err := repository.NewCatalog(filepath.Join("..", "..", "repository", "testdata", "catalog.yaml"))
	require.NoError(t, err)

	registry, err := repository.NewKeyRegistry(rdb, 16)
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	sessions := repository.NewSessionRepository(rdb, "salt", time.Hour)
	counters := repository.NewStatsRepository(rdb, registry)

	polls := service.NewPollService(sessions, catalog, counters, nil, zap.NewNop()).
		WithShuffle(func(int, func(i, j int)) {})
	stats := service.NewStatsService(counters, registry, catalog, nil)

	bot := &fakeBot{}
	h := NewHandler(bot, zap.NewNop(), polls, stats, catalog, adminList{"boss"})

	return &testEnv{h: h, bot: bot, mr: mr, stats: stats}
}

const (
	testUser  int64 = 42
	testAdmin int64 = 7
)

func textEvent(userID int64, username, text string) Event {
	ev := Event{
		Kind:   EventText,
		User:   Sender{ID: userID, Username: username},
		ChatID: userID,
		Text:   text,
	}
	if strings.HasPrefix(text, "/") {
		ev.Command = strings.TrimPrefix(text, "/")
	}
	return ev
}

func answerEvent(userID int64, options ...int) Event {
	return Event{
		Kind:      EventPollAnswer,
		User:      Sender{ID: userID},
		ChatID:    userID,
		OptionIDs: options,
	}
}

func nextEvent(userID int64) Event {
	return Event{
		Kind:         EventCallback,
		User:         Sender{ID: userID},
		ChatID:       userID,
		CallbackID:   "cb",
		CallbackData: buildNextCallback(),
	}
}

func sentTexts(sent []tgbotapi.Chattable) []string {
	var out []string
	for _, c := range sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func sentPolls(sent []tgbotapi.Chattable) []tgbotapi.SendPollConfig {
	var out []tgbotapi.SendPollConfig
	for _, c := range sent {
		if p, ok := c.(tgbotapi.SendPollConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

func lastMessage(t *testing.T, sent []tgbotapi.Chattable) tgbotapi.MessageConfig {
	t.Helper()

	for i := len(sent) - 1; i >= 0; i-- {
		if m, ok := sent[i].(tgbotapi.MessageConfig); ok {
			return m
		}
	}
	t.Fatal("no message sent")
	return tgbotapi.MessageConfig{}
}
