package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
	"github.com/aliskhannn/selfaudit-bot/internal/repository"
)

// Telegram limits for poll prompts.
const (
	MaxOptionLength   = 100
	MaxQuestionLength = 300
)

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrStaleSession  = errors.New("no active poll for this answer")
	ErrInvalidOption = errors.New("invalid option")
	ErrPollFinished  = errors.New("poll already answered")
)

type StepKind int

const (
	StepQuestion StepKind = iota + 1
	StepResult
)

// Step is what the user sees next: a question or the final results.
type Step struct {
	Kind   StepKind
	Prompt *Prompt
	Result *Result
}

// Prompt is a question ready to be sent as a chat poll.
type Prompt struct {
	PollName      string
	Quiz          bool
	Level         int
	Total         int
	Question      string
	Options       []string // in presentation order
	CorrectOption int      // index in Options, -1 for regular polls
}

// Result summarises a finished poll.
type Result struct {
	PollName   string
	Quiz       bool
	Score      int
	Total      int
	Transcript []TranscriptEntry
	Epilogue   string
}

// TranscriptEntry is one answered question, MarkdownV2-escaped.
type TranscriptEntry struct {
	Question string
	Answer   string
	Comment  string // empty when the dataset has no comment
}

// AnswerResult is the outcome of a submitted answer.
type AnswerResult struct {
	Level   int
	Number  int    // true 1-based answer number
	Comment string // comment to show, empty when there is none
	Correct bool
}

type PollService struct {
	sessions    SessionRepository
	datasets    DatasetRepository
	stats       StatsRepository
	completions CompletionRepository
	logger      *zap.Logger
	shuffle     func(n int, swap func(i, j int))
}

// NewPollService creates a PollService. completions may be nil when the archive is disabled.
func NewPollService(
	sessions SessionRepository,
	datasets DatasetRepository,
	stats StatsRepository,
	completions CompletionRepository,
	logger *zap.Logger,
) *PollService {
	return &PollService{
		sessions:    sessions,
		datasets:    datasets,
		stats:       stats,
		completions: completions,
		logger:      logger,
		shuffle:     rand.Shuffle,
	}
}

// WithShuffle replaces the option shuffler, for deterministic quizzes.
func (s *PollService) WithShuffle(fn func(n int, swap func(i, j int))) *PollService {
	s.shuffle = fn
	return s
}

// Reset returns the user's session to idle.
func (s *PollService) Reset(ctx context.Context, userID int64) error {
	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.sessions.Reset(ctx, session)
}

// Start begins a poll from its first question. The session is reset first.
func (s *PollService) Start(ctx context.Context, userID int64, pollName string) (*entities.Poll, Step, error) {
	poll, err := s.poll(pollName)
	if err != nil {
		return nil, Step{}, err
	}

	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, Step{}, err
	}
	if err = s.sessions.Reset(ctx, session); err != nil {
		return nil, Step{}, err
	}
	if err = s.sessions.SetCurrentPoll(ctx, session, poll.Name); err != nil {
		return nil, Step{}, err
	}

	step, err := s.advance(ctx, session, poll)
	if err != nil {
		return nil, Step{}, err
	}
	return poll, step, nil
}

// Next presents the question at the session's level, or the results when none remain.
func (s *PollService) Next(ctx context.Context, userID int64) (Step, error) {
	session, poll, err := s.active(ctx, userID)
	if err != nil {
		return Step{}, err
	}
	return s.advance(ctx, session, poll)
}

// Answer records the option chosen on the current question and moves to the next level.
// optionIDs are indexes in the order the options were presented.
func (s *PollService) Answer(ctx context.Context, userID int64, optionIDs []int) (AnswerResult, error) {
	session, poll, err := s.active(ctx, userID)
	if err != nil {
		return AnswerResult{}, err
	}

	if len(optionIDs) == 0 {
		return AnswerResult{}, ErrInvalidOption
	}

	level := session.PollLevel
	question, ok := poll.Question(level)
	if !ok {
		// every question is answered, the report waits for "next"
		return AnswerResult{}, ErrPollFinished
	}

	number, err := s.answerNumber(poll, session, question, optionIDs[0])
	if err != nil {
		return AnswerResult{}, err
	}
	answer, _ := question.Answer(number)

	if err = s.sessions.AppendAnswer(ctx, session, level, number); err != nil {
		return AnswerResult{}, err
	}
	if err = s.stats.RecordAnswer(ctx, poll.Name, level, number); err != nil {
		return AnswerResult{}, err
	}
	if err = s.sessions.SetPollLevel(ctx, session, level+1); err != nil {
		return AnswerResult{}, err
	}

	res := AnswerResult{Level: level, Number: number, Comment: answer.Comment}
	if answer.IsCorrect() {
		res.Correct = true
		if err = s.sessions.IncrementCorrect(ctx, session); err != nil {
			return AnswerResult{}, err
		}
	}

	return res, nil
}

// answerNumber recovers the dataset answer number from the presented option index.
// Quiz options were shuffled, so the chosen text is looked up among the dataset options.
func (s *PollService) answerNumber(poll *entities.Poll, session *entities.Session, q *entities.Question, optionID int) (int, error) {
	if !poll.Quiz {
		if optionID < 0 || optionID >= len(q.Answers) {
			return 0, fmt.Errorf("%w: %d", ErrInvalidOption, optionID)
		}
		return optionID + 1, nil
	}

	if optionID < 0 || optionID >= len(session.PollOptions) {
		return 0, fmt.Errorf("%w: %d of %d presented", ErrInvalidOption, optionID, len(session.PollOptions))
	}
	chosen := session.PollOptions[optionID]

	for i, text := range q.OptionTexts(MaxOptionLength) {
		if text == chosen {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not an option of level %d", ErrInvalidOption, chosen, q.Level)
}

func (s *PollService) advance(ctx context.Context, session *entities.Session, poll *entities.Poll) (Step, error) {
	question, ok := poll.Question(session.PollLevel)
	if !ok {
		result, err := s.finish(ctx, session, poll)
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: StepResult, Result: result}, nil
	}

	prompt := &Prompt{
		PollName:      poll.Name,
		Quiz:          poll.Quiz,
		Level:         session.PollLevel,
		Total:         poll.QuestionCount(),
		Question:      entities.Truncate(question.Text, MaxQuestionLength),
		Options:       question.OptionTexts(MaxOptionLength),
		CorrectOption: -1,
	}

	if poll.Quiz {
		correct := prompt.Options[correctAnswerIndex(question)]
		s.shuffle(len(prompt.Options), func(i, j int) {
			prompt.Options[i], prompt.Options[j] = prompt.Options[j], prompt.Options[i]
		})
		for i, opt := range prompt.Options {
			if opt == correct {
				prompt.CorrectOption = i
				break
			}
		}
		if err := s.sessions.SetPollOptions(ctx, session, prompt.Options); err != nil {
			return Step{}, err
		}
	}

	return Step{Kind: StepQuestion, Prompt: prompt}, nil
}

// finish builds the results and resets the session to idle.
func (s *PollService) finish(ctx context.Context, session *entities.Session, poll *entities.Poll) (*Result, error) {
	result := &Result{
		PollName: poll.Name,
		Quiz:     poll.Quiz,
		Score:    session.CorrectAnswersCount,
		Total:    poll.QuestionCount(),
		Epilogue: poll.Epilogue,
	}

	for _, a := range session.PollAnswers {
		q, ok := poll.Question(a.Level)
		if !ok {
			continue
		}
		ans, ok := q.Answer(a.Answer)
		if !ok {
			continue
		}
		result.Transcript = append(result.Transcript, TranscriptEntry{
			Question: q.MarkdownText,
			Answer:   ans.MarkdownText,
			Comment:  ans.Comment,
		})
	}

	if err := s.sessions.Reset(ctx, session); err != nil {
		return nil, err
	}

	if s.completions != nil && result.Total > 0 {
		err := s.completions.Record(ctx, entities.Completion{
			UID:      session.UID,
			PollName: poll.Name,
			Score:    result.Score,
			Total:    result.Total,
			IsQuiz:   poll.Quiz,
		})
		if err != nil {
			s.logger.Error("failed to archive poll completion",
				zap.String("poll", poll.Name),
				zap.Error(err),
			)
		}
	}

	return result, nil
}

// active loads a session that has a poll in progress.
func (s *PollService) active(ctx context.Context, userID int64) (*entities.Session, *entities.Poll, error) {
	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if session.IsIdle() {
		return nil, nil, ErrStaleSession
	}

	poll, err := s.poll(session.CurrentPoll)
	if errors.Is(err, ErrPollNotFound) {
		// poll was removed from the catalog since the session started
		if err := s.sessions.Reset(ctx, session); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrStaleSession
	}
	if err != nil {
		return nil, nil, err
	}

	return session, poll, nil
}

func (s *PollService) poll(name string) (*entities.Poll, error) {
	poll, err := s.datasets.Poll(name)
	if errors.Is(err, repository.ErrPollNotFound) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, err
	}
	return poll, nil
}

// correctAnswerIndex returns the first answer marked correct, or the first answer.
func correctAnswerIndex(q *entities.Question) int {
	for i, a := range q.Answers {
		if a.IsCorrect() {
			return i
		}
	}
	return 0
}
