package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

const (
	scanBatchSize     = 100
	allCountersMatch  = "polls:poll*:question*:answer*"
	questionKeyPrefix = "question"
	answerKeyPrefix   = "answer"
)

var ErrInvalidAnswer = errors.New("invalid answer coordinates")

type PollKeyResolver interface {
	KeyFor(ctx context.Context, pollName string) (string, error)
}

// StatsRepository keeps one Redis counter per (poll, question, answer).
type StatsRepository struct {
	rdb  redis.Cmdable
	keys PollKeyResolver
}

func NewStatsRepository(rdb redis.Cmdable, keys PollKeyResolver) *StatsRepository {
	return &StatsRepository{rdb: rdb, keys: keys}
}

func counterKey(pollKey string, question, answer int) string {
	return fmt.Sprintf("polls:%s:%s%d:%s%d", pollKey, questionKeyPrefix, question, answerKeyPrefix, answer)
}

// RecordAnswer increments the counter of an answer. Question is zero-based, answer is 1-based.
func (r *StatsRepository) RecordAnswer(ctx context.Context, pollName string, question, answer int) error {
	if question < 0 || answer < 1 {
		return fmt.Errorf("%w: question %d, answer %d", ErrInvalidAnswer, question, answer)
	}

	key, err := r.keys.KeyFor(ctx, pollName)
	if err != nil {
		return err
	}

	if err := r.rdb.Incr(ctx, counterKey(key, question, answer)).Err(); err != nil {
		return fmt.Errorf("incr answer counter: %w", err)
	}
	return nil
}

// PollReport collects every counter of a poll. A poll without answers yields an empty report.
func (r *StatsRepository) PollReport(ctx context.Context, pollName string) (entities.PollReport, error) {
	key, err := r.keys.KeyFor(ctx, pollName)
	if err != nil {
		return nil, err
	}

	report := entities.PollReport{}
	err = r.scanCounters(ctx, "polls:"+key+":"+questionKeyPrefix+"*:"+answerKeyPrefix+"*", func(k string, v int64) {
		q, a, ok := parseCounterKey(k)
		if !ok {
			return
		}
		if report[q] == nil {
			report[q] = map[int]int64{}
		}
		report[q][a] = v
	})
	if err != nil {
		return nil, fmt.Errorf("poll report for %q: %w", pollName, err)
	}

	return report, nil
}

// TotalAnswers sums all answer counters of all polls.
func (r *StatsRepository) TotalAnswers(ctx context.Context) (int64, error) {
	var total int64
	err := r.scanCounters(ctx, allCountersMatch, func(_ string, v int64) {
		total += v
	})
	if err != nil {
		return 0, fmt.Errorf("total answers: %w", err)
	}
	return total, nil
}

// ResetCounters unlinks every answer counter in batches of scanBatchSize.
// Registry entries stay: keys once allocated are permanent.
func (r *StatsRepository) ResetCounters(ctx context.Context) (int, error) {
	removed := 0
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, allCountersMatch, scanBatchSize).Result()
		if err != nil {
			return removed, fmt.Errorf("scan counters: %w", err)
		}

		if len(keys) > 0 {
			if err := r.rdb.Unlink(ctx, keys...).Err(); err != nil {
				return removed, fmt.Errorf("unlink counters: %w", err)
			}
			removed += len(keys)
		}

		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

func (r *StatsRepository) scanCounters(ctx context.Context, match string, fn func(key string, value int64)) error {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}

		if len(keys) > 0 {
			values, err := r.rdb.MGet(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("mget: %w", err)
			}
			for i, raw := range values {
				s, ok := raw.(string)
				if !ok || s == "" {
					continue
				}
				v, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					continue
				}
				fn(keys[i], v)
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// parseCounterKey extracts question and answer from "polls:<key>:questionQ:answerA".
func parseCounterKey(key string) (question, answer int, ok bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 4 {
		return 0, 0, false
	}

	q, err := strconv.Atoi(strings.TrimPrefix(parts[2], questionKeyPrefix))
	if err != nil || !strings.HasPrefix(parts[2], questionKeyPrefix) {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimPrefix(parts[3], answerKeyPrefix))
	if err != nil || !strings.HasPrefix(parts[3], answerKeyPrefix) {
		return 0, 0, false
	}

	return q, a, true
}
