package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// ChoiceCount is the number of choices every question carries.
const ChoiceCount = 4

// QuestionRecord is an immutable multiple-choice question from the bank.
type QuestionRecord struct {
	Text          string              `json:"question"`
	Choices       [ChoiceCount]string `json:"choices"`
	CorrectChoice int                 `json:"answer"` // 1-based
	Explanation   string              `json:"explanation"`
}

// Validate checks the record is usable for a quiz.
func (q QuestionRecord) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.Wrap(ErrInvalidQuestion, "empty question text")
	}
	if !ValidChoice(q.CorrectChoice) {
		return errors.Wrapf(ErrInvalidQuestion, "answer %d out of range", q.CorrectChoice)
	}
	for i, c := range q.Choices {
		if strings.TrimSpace(c) == "" {
			return errors.Wrapf(ErrInvalidQuestion, "choice%d is empty", i+1)
		}
	}
	return nil
}

// ValidChoice reports whether choice is a 1-based index into the four choices.
func ValidChoice(choice int) bool {
	return choice >= 1 && choice <= ChoiceCount
}

// ScoreEntry holds a participant's accuracy counters for the current month.
type ScoreEntry struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns the percentage of correct answers, 0 when nothing was answered.
func (e ScoreEntry) Accuracy() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Total) * 100
}

// Outcome is the result of one answer submission.
type Outcome int

const (
	OutcomeIncorrect Outcome = iota
	OutcomeCorrect
	OutcomeAlreadyAnswered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeAlreadyAnswered:
		return "already_answered"
	default:
		return "unknown"
	}
}

// AnswerResult is returned to the requester only.
type AnswerResult struct {
	SessionID     string  `json:"sessionId"`
	Outcome       Outcome `json:"-"`
	CorrectChoice int     `json:"correctChoice,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
	Scored        bool    `json:"scored"`
}

// RankEntry is one line of the monthly leaderboard.
type RankEntry struct {
	Position      int     `json:"position"`
	ParticipantID string  `json:"participantId"`
	Accuracy      float64 `json:"accuracy"`
	Correct       int     `json:"correct"`
	Total         int     `json:"total"`
}

// Ranking is the ordered leaderboard. NoParticipants is set instead of an empty
// entry list so callers can render a dedicated message.
type Ranking struct {
	Entries        []RankEntry `json:"entries"`
	NoParticipants bool        `json:"noParticipants"`
}

// AnswerSurface attaches answer controls for a session to a posted message.
type AnswerSurface struct {
	SessionID string
	Choices   int
}

// Message is something the bot posts to a channel.
type Message struct {
	Text    string
	Answers *AnswerSurface
}
