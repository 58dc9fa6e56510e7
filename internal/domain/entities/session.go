package entities

// Session is a snapshot of a user's progress through the poll currently in progress.
// UID is the salted hash of the chat user id; the plain id is never stored.
type Session struct {
	UID                 string       // hashed user id
	CurrentPoll         string       // poll in progress, empty when idle
	PollLevel           int          // zero-based index of the next question
	PollOptions         []string     // options as last presented (quizzes only)
	PollAnswers         []PollAnswer // answers given so far, in order
	CorrectAnswersCount int          // correct answers in the current quiz
}

// PollAnswer records the true 1-based answer number given on a level.
type PollAnswer struct {
	Level  int `json:"level"`
	Answer int `json:"answer"`
}

// NewSession returns a session in its default state.
func NewSession(uid string) *Session {
	return &Session{
		UID:         uid,
		PollOptions: []string{},
		PollAnswers: []PollAnswer{},
	}
}

// IsIdle reports whether no poll is in progress.
func (s *Session) IsIdle() bool {
	return s.CurrentPoll == ""
}

// Clear puts the snapshot back to its default state.
func (s *Session) Clear() {
	s.CurrentPoll = ""
	s.PollLevel = 0
	s.PollOptions = []string{}
	s.PollAnswers = []PollAnswer{}
	s.CorrectAnswersCount = 0
}
