package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"daily-quiz-bot/internal/domain"
	"github.com/pkg/errors"
)

// QuestionLoader fetches every question from a backing source (CSV files, Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.QuestionRecord, error)
}

// QuestionBank is an immutable set of questions sampled uniformly at random.
type QuestionBank struct {
	questions []domain.QuestionRecord

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewQuestionBank validates and copies questions. An empty set is rejected.
func NewQuestionBank(questions []domain.QuestionRecord) (*QuestionBank, error) {
	return NewQuestionBankWithSource(questions, rand.NewSource(time.Now().UnixNano()))
}

// NewQuestionBankWithSource allows deterministic sampling in tests.
func NewQuestionBankWithSource(questions []domain.QuestionRecord, src rand.Source) (*QuestionBank, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptyQuestionBank
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, errors.Wrapf(err, "question %d", i+1)
		}
	}
	copied := make([]domain.QuestionRecord, len(questions))
	copy(copied, questions)
	return &QuestionBank{questions: copied, rnd: rand.New(src)}, nil
}

// LoadQuestionBank builds a bank from loader.
func LoadQuestionBank(ctx context.Context, loader QuestionLoader) (*QuestionBank, error) {
	questions, err := loader.LoadQuestions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load questions")
	}
	return NewQuestionBank(questions)
}

// Random returns one question; rand.Rand is not goroutine-safe so access is locked.
func (b *QuestionBank) Random() domain.QuestionRecord {
	b.mu.Lock()
	i := b.rnd.Intn(len(b.questions))
	b.mu.Unlock()
	return b.questions[i]
}

func (b *QuestionBank) Len() int {
	return len(b.questions)
}

// StaticQuestionLoader serves a fixed slice (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.QuestionRecord
}

func NewStaticQuestionLoader(questions []domain.QuestionRecord) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.QuestionRecord, error) {
	return l.questions, nil
}
