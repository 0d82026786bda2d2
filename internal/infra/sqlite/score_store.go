package sqlite

import (
	"context"
	"database/sql"

	"daily-quiz-bot/internal/domain"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
    participant_id TEXT PRIMARY KEY,
    correct INTEGER NOT NULL CHECK (correct >= 0),
    total INTEGER NOT NULL CHECK (total >= correct)
);
`

// ScoreStore keeps the ledger in a single SQLite table.
type ScoreStore struct {
	db *sql.DB
}

func NewScoreStore(dbPath string) (*ScoreStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply sqlite schema")
	}
	return &ScoreStore{db: db}, nil
}

func (s *ScoreStore) Close() error {
	return s.db.Close()
}

func (s *ScoreStore) Load(ctx context.Context) (map[string]domain.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT participant_id, correct, total FROM scores")
	if err != nil {
		return nil, errors.Wrap(err, "query scores")
	}
	defer rows.Close()

	scores := make(map[string]domain.ScoreEntry)
	for rows.Next() {
		var (
			id    string
			entry domain.ScoreEntry
		)
		if err := rows.Scan(&id, &entry.Correct, &entry.Total); err != nil {
			return nil, errors.Wrap(err, "scan score")
		}
		scores[id] = entry
	}
	return scores, errors.Wrap(rows.Err(), "iterate scores")
}

// Save replaces the table contents in one transaction.
func (s *ScoreStore) Save(ctx context.Context, scores map[string]domain.ScoreEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scores"); err != nil {
		return errors.Wrap(err, "clear scores")
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO scores (participant_id, correct, total) VALUES (?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()
	for id, entry := range scores {
		if _, err := stmt.ExecContext(ctx, id, entry.Correct, entry.Total); err != nil {
			return errors.Wrapf(err, "insert score %s", id)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}
