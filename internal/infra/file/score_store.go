package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"daily-quiz-bot/internal/domain"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ScoreStore persists the ledger as a JSON object keyed by participant ID:
//
//	{"1234": {"correct": 2, "total": 3}}
//
// Writes go to a temp file in the same directory and are renamed into place.
type ScoreStore struct {
	path string
	mu   sync.Mutex
}

func NewScoreStore(path string) (*ScoreStore, error) {
	if path == "" {
		return nil, errors.New("score file path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create score directory")
	}
	return &ScoreStore{path: path}, nil
}

// Load returns an empty ledger when the file does not exist yet.
func (s *ScoreStore) Load(_ context.Context) (map[string]domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]domain.ScoreEntry{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	scores := map[string]domain.ScoreEntry{}
	if len(data) == 0 {
		return scores, nil
	}
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, errors.Wrapf(err, "decode %s", s.path)
	}
	return scores, nil
}

func (s *ScoreStore) Save(ctx context.Context, scores map[string]domain.ScoreEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode scores")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, data)
}

// writeAtomic writes data to a temp file in the target directory and renames it
// into place, so readers see either the old or the new content.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write temp file for %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close temp file for %s", path)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replace %s", path)
}
