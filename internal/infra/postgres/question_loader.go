package postgres

import (
	"context"

	"daily-quiz-bot/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

// QuestionLoader loads the question bank from the questions table.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.QuestionRecord, error) {
	rows, err := l.pool.Query(ctx, `SELECT question, choice1, choice2, choice3, choice4, answer, explanation FROM questions ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query questions")
	}
	defer rows.Close()

	var questions []domain.QuestionRecord
	for rows.Next() {
		var q domain.QuestionRecord
		if err := rows.Scan(&q.Text, &q.Choices[0], &q.Choices[1], &q.Choices[2], &q.Choices[3], &q.CorrectChoice, &q.Explanation); err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		questions = append(questions, q)
	}
	return questions, errors.Wrap(rows.Err(), "iterate questions")
}
