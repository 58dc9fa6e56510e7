package entities

import "strings"

// CorrectMark prefixes comments of correct answers.
const CorrectMark = "✅"

// MaxAnswers is the number of options a chat poll can carry.
const MaxAnswers = 9

// Poll is a named, ordered sequence of questions.
type Poll struct {
	Name      string
	Quiz      bool
	Prologue  string
	Epilogue  string
	Questions []Question
}

// QuestionCount returns the number of questions in the poll.
func (p *Poll) QuestionCount() int {
	return len(p.Questions)
}

// Question returns the question at a zero-based level.
func (p *Poll) Question(level int) (*Question, bool) {
	if level < 0 || level >= len(p.Questions) {
		return nil, false
	}
	return &p.Questions[level], true
}

// Question is one step of a poll.
type Question struct {
	Level        int      // level as written in the dataset
	Text         string   // raw text
	MarkdownText string   // MarkdownV2-escaped text
	Answers      []Answer // 1..MaxAnswers options in dataset order
}

// Answer is one option of a question.
type Answer struct {
	Text         string
	MarkdownText string
	Comment      string // MarkdownV2 comment shown after the answer, may be empty
}

// IsCorrect reports whether the answer's comment carries the correct mark.
func (a Answer) IsCorrect() bool {
	return strings.HasPrefix(strings.TrimSpace(a.Comment), CorrectMark)
}

// Answer returns the option by its 1-based number.
func (q *Question) Answer(number int) (*Answer, bool) {
	if number < 1 || number > len(q.Answers) {
		return nil, false
	}
	return &q.Answers[number-1], true
}

// OptionTexts returns option texts in dataset order, truncated to limit runes.
func (q *Question) OptionTexts(limit int) []string {
	out := make([]string, 0, len(q.Answers))
	for _, a := range q.Answers {
		out = append(out, Truncate(a.Text, limit))
	}
	return out
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
