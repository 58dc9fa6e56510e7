package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

var (
	questionRowRe = regexp.MustCompile(`^question(\d{1,2})$`)
	optionRowRe   = regexp.MustCompile(`^(\d{1,2})\.(answer|comment)([1-9])$`)

	markdownUnescaper = strings.NewReplacer(
		`\!`, "!",
		`\.`, ".",
		`\–`, "-",
		`\-`, "-",
		`\(`, "(",
		`\)`, ")",
		`\_`, "_",
		`\[`, "[",
		`\]`, "]",
		`\*`, "*",
	)
)

// UnescapeMarkdown removes MarkdownV2 escapes from text meant for plain rendering.
func UnescapeMarkdown(s string) string {
	return markdownUnescaper.Replace(s)
}

type rawQuestion struct {
	text     string
	answers  map[int]string
	comments map[int]string
}

// LoadDataset reads a poll dataset from a CSV file.
func LoadDataset(path string) (*entities.Poll, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseDataset(f)
}

// ParseDataset reads "key,value" rows: prologue, epilogue, questionN,
// N.answerK and N.commentK. Values are MarkdownV2-escaped.
// Unknown keys are ignored.
func ParseDataset(r io.Reader) (*entities.Poll, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	poll := &entities.Poll{}
	raw := map[int]*rawQuestion{}
	get := func(level int) *rawQuestion {
		q, ok := raw[level]
		if !ok {
			q = &rawQuestion{answers: map[int]string{}, comments: map[int]string{}}
			raw[level] = q
		}
		return q
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		if len(rec) < 2 {
			continue
		}

		key, val := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		switch {
		case key == "prologue":
			poll.Prologue = val
		case key == "epilogue":
			poll.Epilogue = val
		case questionRowRe.MatchString(key):
			level, _ := strconv.Atoi(questionRowRe.FindStringSubmatch(key)[1])
			get(level).text = val
		case optionRowRe.MatchString(key):
			m := optionRowRe.FindStringSubmatch(key)
			level, _ := strconv.Atoi(m[1])
			n, _ := strconv.Atoi(m[3])
			if val == "" {
				continue
			}
			if m[2] == "answer" {
				get(level).answers[n] = val
			} else {
				get(level).comments[n] = val
			}
		}
	}

	levels := make([]int, 0, len(raw))
	for level := range raw {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	for _, level := range levels {
		rq := raw[level]
		if rq.text == "" {
			return nil, fmt.Errorf("level %d: missing question text", level)
		}

		q := entities.Question{
			Level:        level,
			Text:         UnescapeMarkdown(rq.text),
			MarkdownText: rq.text,
		}
		for n := 1; n <= entities.MaxAnswers; n++ {
			text, ok := rq.answers[n]
			if !ok {
				continue
			}
			q.Answers = append(q.Answers, entities.Answer{
				Text:         UnescapeMarkdown(text),
				MarkdownText: text,
				Comment:      rq.comments[n],
			})
		}
		if len(q.Answers) == 0 {
			return nil, fmt.Errorf("level %d: no answers", level)
		}

		poll.Questions = append(poll.Questions, q)
	}

	return poll, nil
}
