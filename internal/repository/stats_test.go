package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

func newTestStats(t *testing.T) (*StatsRepository, *KeyRegistry) {
	t.Helper()
	_, rdb := newTestRedis(t)
	reg := newTestRegistry(t, rdb)
	return NewStatsRepository(rdb, reg), reg
}

func TestRecordAnswerAndReport(t *testing.T) {
	stats, _ := newTestStats(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, stats.RecordAnswer(ctx, "Quiz", 2, 3))
	}
	require.NoError(t, stats.RecordAnswer(ctx, "Quiz", 2, 1))

	report, err := stats.PollReport(ctx, "Quiz")
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{3: 5, 1: 1}, report[2])
	assert.True(t, report.Answered(2))
	assert.False(t, report.Answered(0))
}

func TestPollReportEmpty(t *testing.T) {
	stats, _ := newTestStats(t)

	report, err := stats.PollReport(context.Background(), "Nobody answered")
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestPollReportDoesNotMixPolls(t *testing.T) {
	stats, reg := newTestStats(t)
	ctx := context.Background()

	// poll1 and poll10 share a prefix
	for i := 0; i < 11; i++ {
		_, err := reg.KeyFor(ctx, string(rune('a'+i)))
		require.NoError(t, err)
	}
	require.NoError(t, stats.RecordAnswer(ctx, "b", 0, 1))
	require.NoError(t, stats.RecordAnswer(ctx, "k", 0, 2))

	report, err := stats.PollReport(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, entities.PollReport{0: {1: 1}}, report)
}

func TestRecordAnswerRejectsBadCoordinates(t *testing.T) {
	stats, _ := newTestStats(t)
	ctx := context.Background()

	require.ErrorIs(t, stats.RecordAnswer(ctx, "Quiz", -1, 1), ErrInvalidAnswer)
	require.ErrorIs(t, stats.RecordAnswer(ctx, "Quiz", 0, 0), ErrInvalidAnswer)
}

func TestRecordAnswerConcurrent(t *testing.T) {
	stats, _ := newTestStats(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, stats.RecordAnswer(ctx, "Quiz", i%2, 1))
		}(i)
	}
	wg.Wait()

	report, err := stats.PollReport(ctx, "Quiz")
	require.NoError(t, err)
	assert.Equal(t, entities.PollReport{0: {1: 20}, 1: {1: 20}}, report)
}

func TestTotalAnswers(t *testing.T) {
	stats, _ := newTestStats(t)
	ctx := context.Background()

	require.NoError(t, stats.RecordAnswer(ctx, "A", 0, 1))
	require.NoError(t, stats.RecordAnswer(ctx, "A", 1, 2))
	require.NoError(t, stats.RecordAnswer(ctx, "B", 0, 1))
	require.NoError(t, stats.RecordAnswer(ctx, "B", 0, 1))

	total, err := stats.TotalAnswers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}

func TestResetCountersKeepsRegistry(t *testing.T) {
	stats, reg := newTestStats(t)
	ctx := context.Background()

	key, err := reg.KeyFor(ctx, "Quiz")
	require.NoError(t, err)

	// more than one scan batch
	for q := 0; q < 30; q++ {
		for a := 1; a <= 5; a++ {
			require.NoError(t, stats.RecordAnswer(ctx, "Quiz", q, a))
		}
	}

	removed, err := stats.ResetCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 150, removed)

	report, err := stats.PollReport(ctx, "Quiz")
	require.NoError(t, err)
	assert.Empty(t, report)

	total, err := stats.TotalAnswers(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	fresh, err := NewKeyRegistry(stats.rdb, 8)
	require.NoError(t, err)
	defer fresh.Close()
	again, err := fresh.KeyFor(ctx, "Quiz")
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestParseCounterKey(t *testing.T) {
	q, a, ok := parseCounterKey("polls:poll3:question12:answer4")
	require.True(t, ok)
	assert.Equal(t, 12, q)
	assert.Equal(t, 4, a)

	for _, bad := range []string{"polls:poll3", "polls:poll3:q1:answer1", "polls:poll3:question1:x1", "a:b:c:d:e"} {
		_, _, ok := parseCounterKey(bad)
		assert.False(t, ok, bad)
	}
}
