package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// FireGuard keeps the last fired schedule day in a JSON file so a restart
// inside the catch-up window does not fire the same day again:
//
//	{"day": "2026-10-14", "previous": "2026-10-13"}
type FireGuard struct {
	path string
	mu   sync.Mutex
}

type fireState struct {
	Day      string `json:"day"`
	Previous string `json:"previous,omitempty"`
}

func NewFireGuard(path string) (*FireGuard, error) {
	if path == "" {
		return nil, errors.New("fire state path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create fire state directory")
	}
	return &FireGuard{path: path}, nil
}

func (g *FireGuard) Claim(_ context.Context, day string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, err := g.read()
	if err != nil {
		return false, err
	}
	if state.Day == day {
		return false, nil
	}
	if err := g.write(fireState{Day: day, Previous: state.Day}); err != nil {
		return false, err
	}
	return true, nil
}

// Release undoes a claim of day, restoring the day fired before it.
func (g *FireGuard) Release(_ context.Context, day string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, err := g.read()
	if err != nil {
		return err
	}
	if state.Day != day {
		return nil
	}
	return g.write(fireState{Day: state.Previous})
}

// LastFired returns the recorded day, empty when nothing has fired yet.
func (g *FireGuard) LastFired() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	state, err := g.read()
	return state.Day, err
}

func (g *FireGuard) read() (fireState, error) {
	var state fireState
	data, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		return state, nil
	}
	if err != nil {
		return state, errors.Wrapf(err, "read %s", g.path)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, errors.Wrapf(err, "decode %s", g.path)
	}
	return state, nil
}

func (g *FireGuard) write(state fireState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode fire state")
	}
	return writeAtomic(g.path, data)
}
