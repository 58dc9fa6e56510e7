package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

const DefaultSessionLifetime = 24 * time.Hour

const (
	fieldLevel          = "level"
	fieldCurrentPoll    = "current_poll"
	fieldPollOptions    = "poll_options"
	fieldPollAnswers    = "poll_answers"
	fieldCorrectAnswers = "correct_answers"
)

// SessionRepository keeps per-user poll progress in Redis.
// Every field is a separate key with its own TTL, refreshed on write;
// an expired field reads back as its default.
type SessionRepository struct {
	rdb      redis.Cmdable
	salt     string
	lifetime time.Duration
}

// NewSessionRepository creates a SessionRepository. A non-positive lifetime
// falls back to DefaultSessionLifetime.
func NewSessionRepository(rdb redis.Cmdable, salt string, lifetime time.Duration) *SessionRepository {
	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}
	return &SessionRepository{
		rdb:      rdb,
		salt:     salt,
		lifetime: lifetime,
	}
}

// HashUID turns a chat user id into the salted one-way hash used as storage key.
func HashUID(salt string, userID int64) string {
	sum := sha256.Sum256([]byte(salt + strconv.FormatInt(userID, 10)))
	return hex.EncodeToString(sum[:])
}

func sessionKey(uid, field string) string {
	return "user:" + uid + ":" + field
}

// Get loads the session of a user. Absent or expired fields come back as defaults,
// so a user never seen before gets an idle session.
func (r *SessionRepository) Get(ctx context.Context, userID int64) (*entities.Session, error) {
	uid := HashUID(r.salt, userID)
	s := entities.NewSession(uid)

	pipe := r.rdb.Pipeline()
	levelCmd := pipe.Get(ctx, sessionKey(uid, fieldLevel))
	pollCmd := pipe.Get(ctx, sessionKey(uid, fieldCurrentPoll))
	optionsCmd := pipe.Get(ctx, sessionKey(uid, fieldPollOptions))
	correctCmd := pipe.Get(ctx, sessionKey(uid, fieldCorrectAnswers))
	answersCmd := pipe.LRange(ctx, sessionKey(uid, fieldPollAnswers), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var err error
	if s.PollLevel, err = intOrZero(levelCmd); err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	if s.CorrectAnswersCount, err = intOrZero(correctCmd); err != nil {
		return nil, fmt.Errorf("read correct answers: %w", err)
	}

	if s.CurrentPoll, err = stringOrEmpty(pollCmd); err != nil {
		return nil, fmt.Errorf("read current poll: %w", err)
	}

	raw, err := stringOrEmpty(optionsCmd)
	if err != nil {
		return nil, fmt.Errorf("read poll options: %w", err)
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.PollOptions); err != nil {
			return nil, fmt.Errorf("decode poll options: %w", err)
		}
	}

	items, err := answersCmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read poll answers: %w", err)
	}
	for _, item := range items {
		var a entities.PollAnswer
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("decode poll answer: %w", err)
		}
		s.PollAnswers = append(s.PollAnswers, a)
	}

	return s, nil
}

// Reset clears every field of the session in one MULTI/EXEC.
func (r *SessionRepository) Reset(ctx context.Context, s *entities.Session) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(s.UID, fieldLevel), 0, r.lifetime)
		pipe.Set(ctx, sessionKey(s.UID, fieldCurrentPoll), "", r.lifetime)
		pipe.Set(ctx, sessionKey(s.UID, fieldPollOptions), "[]", r.lifetime)
		pipe.Del(ctx, sessionKey(s.UID, fieldPollAnswers))
		pipe.Set(ctx, sessionKey(s.UID, fieldCorrectAnswers), 0, r.lifetime)
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset session: %w", err)
	}

	s.Clear()
	return nil
}

func (r *SessionRepository) SetCurrentPoll(ctx context.Context, s *entities.Session, name string) error {
	if err := r.rdb.Set(ctx, sessionKey(s.UID, fieldCurrentPoll), name, r.lifetime).Err(); err != nil {
		return fmt.Errorf("set current poll: %w", err)
	}
	s.CurrentPoll = name
	return nil
}

func (r *SessionRepository) SetPollLevel(ctx context.Context, s *entities.Session, level int) error {
	if err := r.rdb.Set(ctx, sessionKey(s.UID, fieldLevel), level, r.lifetime).Err(); err != nil {
		return fmt.Errorf("set poll level: %w", err)
	}
	s.PollLevel = level
	return nil
}

func (r *SessionRepository) SetPollOptions(ctx context.Context, s *entities.Session, options []string) error {
	if options == nil {
		options = []string{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode poll options: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(s.UID, fieldPollOptions), raw, r.lifetime).Err(); err != nil {
		return fmt.Errorf("set poll options: %w", err)
	}
	s.PollOptions = append([]string(nil), options...)
	return nil
}

// AppendAnswer adds a level/answer pair to the answer log.
// The log is a Redis list, so concurrent appends never drop each other.
func (r *SessionRepository) AppendAnswer(ctx context.Context, s *entities.Session, level, answer int) error {
	a := entities.PollAnswer{Level: level, Answer: answer}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode poll answer: %w", err)
	}

	key := sessionKey(s.UID, fieldPollAnswers)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, raw)
		pipe.Expire(ctx, key, r.lifetime)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append poll answer: %w", err)
	}

	s.PollAnswers = append(s.PollAnswers, a)
	return nil
}

// IncrementCorrect atomically adds one to the correct answers counter.
func (r *SessionRepository) IncrementCorrect(ctx context.Context, s *entities.Session) error {
	key := sessionKey(s.UID, fieldCorrectAnswers)

	var incr *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, r.lifetime)
		return nil
	})
	if err != nil {
		return fmt.Errorf("increment correct answers: %w", err)
	}

	s.CorrectAnswersCount = int(incr.Val())
	return nil
}

func intOrZero(cmd *redis.StringCmd) (int, error) {
	v, err := cmd.Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func stringOrEmpty(cmd *redis.StringCmd) (string, error) {
	v, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
