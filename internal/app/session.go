package app

import (
	"sync"
	"time"

	"daily-quiz-bot/internal/domain"
)

// Session is an open (or closed) question instance and the set of participants
// that already answered it.
type Session struct {
	id       string
	question domain.QuestionRecord
	scored   bool
	openedAt time.Time

	mu       sync.Mutex
	closed   bool
	answered map[string]struct{}
}

// NewSession is exported for infrastructure layers and tests that need to seed sessions.
func NewSession(id string, question domain.QuestionRecord, scored bool, openedAt time.Time) *Session {
	return &Session{
		id:       id,
		question: question,
		scored:   scored,
		openedAt: openedAt,
		answered: make(map[string]struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Question returns the record the session wraps.
func (s *Session) Question() domain.QuestionRecord {
	return s.question
}

// Scored reports whether answers count toward the ledger.
func (s *Session) Scored() bool {
	return s.scored
}

func (s *Session) OpenedAt() time.Time {
	return s.openedAt
}

// Close permanently stops answer collection. Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// AnsweredCount returns how many distinct participants answered.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answered)
}

func (s *Session) HasAnswered(participantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.answered[participantID]
	return ok
}

// answer applies one submission. record runs under the session lock so the
// membership check, the insert and the ledger update cannot interleave with a
// concurrent submission from the same participant.
func (s *Session) answer(participantID string, choice int, record func(correct bool)) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.AnswerResult{}, domain.ErrSessionClosed
	}
	result := domain.AnswerResult{SessionID: s.id, Scored: s.scored}
	if _, ok := s.answered[participantID]; ok {
		result.Outcome = domain.OutcomeAlreadyAnswered
		return result, nil
	}
	s.answered[participantID] = struct{}{}

	correct := choice == s.question.CorrectChoice
	if s.scored && record != nil {
		record(correct)
	}

	result.CorrectChoice = s.question.CorrectChoice
	result.Explanation = s.question.Explanation
	if correct {
		result.Outcome = domain.OutcomeCorrect
	} else {
		result.Outcome = domain.OutcomeIncorrect
	}
	return result, nil
}
