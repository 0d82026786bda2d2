package domain

import "github.com/pkg/errors"

var (
	// ErrChannelUnresolved is returned when the target chat channel cannot be found.
	ErrChannelUnresolved = errors.New("chat channel unresolved")
	// ErrInvalidChoice indicates a submitted choice outside 1..4.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrSessionNotFound is returned when an answer references an unknown (or evicted) session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned when an answer arrives after the session was superseded.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrEmptyQuestionBank means no question could be loaded; the bot cannot run without one.
	ErrEmptyQuestionBank = errors.New("question bank is empty")
	// ErrInvalidQuestion indicates a malformed question record.
	ErrInvalidQuestion = errors.New("invalid question record")
	// ErrPersistence wraps score store failures.
	ErrPersistence = errors.New("score persistence failed")
)
