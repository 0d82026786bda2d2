package postgres

import (
	"context"

	"daily-quiz-bot/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

// ScoreStore persists the ledger in the scores table.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Load(ctx context.Context) (map[string]domain.ScoreEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT participant_id, correct, total FROM scores`)
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

// Save replaces the table contents in a single transaction.
func (s *ScoreStore) Save(ctx context.Context, scores map[string]domain.ScoreEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM scores`)
	for id, entry := range scores {
		batch.Queue(`INSERT INTO scores (participant_id, correct, total, updated_at) VALUES ($1, $2, $3, now())`,
			id, entry.Correct, entry.Total)
	}
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return errors.Wrapf(err, "batch statement %d", i)
		}
	}
	if err := results.Close(); err != nil {
		return errors.Wrap(err, "close batch")
	}
	return errors.Wrap(tx.Commit(ctx), "commit")
}
