package redis

import (
	"context"

	"daily-quiz-bot/internal/domain"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ScoreStore keeps the ledger in one Redis hash:
//
//	HSET {prefix}scores {participantID} {"correct":2,"total":3}
type ScoreStore struct {
	client *redis.Client
	prefix string
}

func NewScoreStore(client *redis.Client, prefix string) *ScoreStore {
	return &ScoreStore{client: client, prefix: prefix}
}

func (s *ScoreStore) Load(ctx context.Context) (map[string]domain.ScoreEntry, error) {
	raw, err := s.client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "hgetall scores")
	}
	scores := make(map[string]domain.ScoreEntry, len(raw))
	for id, value := range raw {
		var entry domain.ScoreEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			return nil, errors.Wrapf(err, "decode score %s", id)
		}
		scores[id] = entry
	}
	return scores, nil
}

// Save atomically replaces the hash (MULTI / DEL / HSET / EXEC).
func (s *ScoreStore) Save(ctx context.Context, scores map[string]domain.ScoreEntry) error {
	values := make([]interface{}, 0, len(scores)*2)
	for id, entry := range scores {
		encoded, err := json.Marshal(entry)
		if err != nil {
			return errors.Wrapf(err, "encode score %s", id)
		}
		values = append(values, id, string(encoded))
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key())
		if len(values) > 0 {
			pipe.HSet(ctx, s.key(), values...)
		}
		return nil
	})
	return errors.Wrap(err, "save scores")
}

func (s *ScoreStore) key() string {
	return s.prefix + "scores"
}
