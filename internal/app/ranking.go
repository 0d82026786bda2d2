package app

import (
	"sort"

	"daily-quiz-bot/internal/domain"
)

// Rank builds the leaderboard from a ledger snapshot. Entries with no answers
// are skipped. Order: accuracy desc, then more answers first, then participant
// ID ascending, so equal input always yields the same order.
func Rank(scores map[string]domain.ScoreEntry) domain.Ranking {
	entries := make([]domain.RankEntry, 0, len(scores))
	for id, entry := range scores {
		if entry.Total <= 0 {
			continue
		}
		entries = append(entries, domain.RankEntry{
			ParticipantID: id,
			Accuracy:      entry.Accuracy(),
			Correct:       entry.Correct,
			Total:         entry.Total,
		})
	}
	if len(entries) == 0 {
		return domain.Ranking{NoParticipants: true}
	}

	sort.Slice(entries, func(i, j int) bool {
		return rankLess(entries[i], entries[j])
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return domain.Ranking{Entries: entries}
}

func rankLess(a, b domain.RankEntry) bool {
	// cross-multiplied to compare correct/total without float rounding
	lhs := a.Correct * b.Total
	rhs := b.Correct * a.Total
	if lhs != rhs {
		return lhs > rhs
	}
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	return a.ParticipantID < b.ParticipantID
}
