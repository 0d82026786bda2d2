package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"daily-quiz-bot/internal/domain"
	"github.com/pkg/errors"
)

var requiredColumns = []string{"question", "choice1", "choice2", "choice3", "choice4", "answer", "explanation"}

// QuestionLoader reads question banks from CSV files with a header row
// naming the columns question, choice1..choice4, answer and explanation.
// Files are concatenated in the order given.
type QuestionLoader struct {
	paths []string
}

func NewQuestionLoader(paths ...string) *QuestionLoader {
	return &QuestionLoader{paths: paths}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.QuestionRecord, error) {
	var all []domain.QuestionRecord
	for _, path := range l.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		questions, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, questions...)
	}
	return all, nil
}

func loadFile(path string) ([]domain.QuestionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open question bank %s", path)
	}
	defer f.Close()

	questions, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return questions, nil
}

// Parse decodes one CSV stream. Column order is taken from the header.
func Parse(r io.Reader) ([]domain.QuestionRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		// tolerate a UTF-8 BOM written by spreadsheet exports
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		index[strings.ToLower(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.Wrapf(domain.ErrInvalidQuestion, "missing column %q", col)
		}
	}

	var questions []domain.QuestionRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		field := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		answer, err := strconv.Atoi(field("answer"))
		if err != nil {
			return nil, errors.Wrapf(domain.ErrInvalidQuestion, "line %d: answer %q is not a number", line, field("answer"))
		}
		q := domain.QuestionRecord{
			Text:          field("question"),
			Choices:       [domain.ChoiceCount]string{field("choice1"), field("choice2"), field("choice3"), field("choice4")},
			CorrectChoice: answer,
			Explanation:   field("explanation"),
		}
		if err := q.Validate(); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		questions = append(questions, q)
	}
	return questions, nil
}
