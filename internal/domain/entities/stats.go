package entities

// PollReport maps question index to answer number to count.
type PollReport map[int]map[int]int64

// Answered reports whether any answer was recorded for the question.
func (r PollReport) Answered(question int) bool {
	return len(r[question]) > 0
}

// Completion is a finished poll stored in the archive.
type Completion struct {
	UID      string
	PollName string
	Score    int
	Total    int
	IsQuiz   bool
}

// CompletionCount is a per-poll number of finished polls.
type CompletionCount struct {
	PollName string
	Count    int64
}
