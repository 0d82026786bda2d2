package memory

import (
	"context"
	"sync"

	"daily-quiz-bot/internal/domain"
)

// ScoreStore keeps the last saved ledger in process memory; scores are lost on restart.
type ScoreStore struct {
	mu     sync.RWMutex
	scores map[string]domain.ScoreEntry
	saves  int
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{scores: make(map[string]domain.ScoreEntry)}
}

func (s *ScoreStore) Load(_ context.Context) (map[string]domain.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneScores(s.scores), nil
}

func (s *ScoreStore) Save(_ context.Context, scores map[string]domain.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = cloneScores(scores)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *ScoreStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func cloneScores(in map[string]domain.ScoreEntry) map[string]domain.ScoreEntry {
	out := make(map[string]domain.ScoreEntry, len(in))
	for id, entry := range in {
		out[id] = entry
	}
	return out
}
