package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"daily-quiz-bot/internal/domain"
	"github.com/pkg/errors"
)

// ScoreStore persists the ledger (file, SQLite, Redis, Postgres...).
type ScoreStore interface {
	Load(ctx context.Context) (map[string]domain.ScoreEntry, error)
	Save(ctx context.Context, scores map[string]domain.ScoreEntry) error
}

// ScoreLedger owns the monthly accuracy counters. The store is optional; a nil
// store keeps scores in memory only.
type ScoreLedger struct {
	store   ScoreStore
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	scores map[string]domain.ScoreEntry
}

func NewScoreLedger(store ScoreStore, timeout time.Duration, logger *slog.Logger) *ScoreLedger {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreLedger{
		store:   store,
		timeout: timeout,
		logger:  logger,
		scores:  make(map[string]domain.ScoreEntry),
	}
}

// Load replaces the in-memory counters with the persisted ones.
func (l *ScoreLedger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	scores, err := l.store.Load(ctx)
	if err != nil {
		return errors.Wrapf(domain.ErrPersistence, "load: %v", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores = make(map[string]domain.ScoreEntry, len(scores))
	for id, entry := range scores {
		if entry.Total <= 0 || entry.Correct < 0 || entry.Correct > entry.Total {
			l.logger.Warn("dropping inconsistent score entry", "participant", id, "correct", entry.Correct, "total", entry.Total)
			continue
		}
		l.scores[id] = entry
	}
	return nil
}

// Record counts one scored answer and persists the ledger.
func (l *ScoreLedger) Record(ctx context.Context, participantID string, correct bool) domain.ScoreEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.scores[participantID]
	entry.Total++
	if correct {
		entry.Correct++
	}
	l.scores[participantID] = entry
	l.persistLocked(ctx)
	return entry
}

// Get returns a participant's counters.
func (l *ScoreLedger) Get(participantID string) (domain.ScoreEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.scores[participantID]
	return entry, ok
}

// Snapshot returns a copy of all counters.
func (l *ScoreLedger) Snapshot() map[string]domain.ScoreEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyLocked()
}

// Reset clears every entry and persists the empty ledger.
func (l *ScoreLedger) Reset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores = make(map[string]domain.ScoreEntry)
	l.persistLocked(ctx)
}

func (l *ScoreLedger) copyLocked() map[string]domain.ScoreEntry {
	out := make(map[string]domain.ScoreEntry, len(l.scores))
	for id, entry := range l.scores {
		out[id] = entry
	}
	return out
}

// persistLocked writes a snapshot with a bounded deadline. Failures are logged;
// memory stays authoritative and the next successful write catches up.
func (l *ScoreLedger) persistLocked(ctx context.Context) {
	if l.store == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()
	if err := l.store.Save(saveCtx, l.copyLocked()); err != nil {
		l.logger.Error(domain.ErrPersistence.Error(), "error", err, "entries", len(l.scores))
	}
}
