package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"courseplay/internal/modules/playback/domain"
	playbackout "courseplay/internal/modules/playback/port/out"
	apperrors "courseplay/internal/platform/errors"
)

const maxHistory = 50

type locationFile struct {
	History []string `json:"history"`
}

// FileLocationNavigator keeps the location history in a JSON file so the last
// course page survives restarts.
type FileLocationNavigator struct {
	path string
	mu   sync.Mutex
}

func NewFileLocationNavigator(dataDir string) playbackout.Navigator {
	return &FileLocationNavigator{path: filepath.Join(dataDir, "location.json")}
}

func (n *FileLocationNavigator) Push(_ context.Context, loc domain.Location) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, err := n.load()
	if err != nil {
		return err
	}
	if top := len(state.History) - 1; top >= 0 && state.History[top] == loc.String() {
		return nil
	}
	state.History = append(state.History, loc.String())
	if len(state.History) > maxHistory {
		state.History = state.History[len(state.History)-maxHistory:]
	}
	return n.save(state)
}

func (n *FileLocationNavigator) Replace(_ context.Context, loc domain.Location) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, err := n.load()
	if err != nil {
		return err
	}
	if len(state.History) == 0 {
		state.History = []string{loc.String()}
	} else {
		state.History[len(state.History)-1] = loc.String()
	}
	return n.save(state)
}

func (n *FileLocationNavigator) Back(_ context.Context) (domain.Location, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, err := n.load()
	if err != nil {
		return domain.Location{}, err
	}
	if len(state.History) > 0 {
		state.History = state.History[:len(state.History)-1]
	}
	if err := n.save(state); err != nil {
		return domain.Location{}, err
	}
	return top(state)
}

func (n *FileLocationNavigator) Current(_ context.Context) (domain.Location, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, err := n.load()
	if err != nil {
		return domain.Location{}, err
	}
	return top(state)
}

func top(state locationFile) (domain.Location, error) {
	if len(state.History) == 0 {
		return domain.Location{}, apperrors.ErrNoLocation
	}
	return domain.ParseLocation(state.History[len(state.History)-1])
}

func (n *FileLocationNavigator) load() (locationFile, error) {
	payload, err := os.ReadFile(n.path)
	if err != nil {
		if os.IsNotExist(err) {
			return locationFile{}, nil
		}
		return locationFile{}, fmt.Errorf("read location history: %w", err)
	}
	state := locationFile{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return locationFile{}, fmt.Errorf("decode location history: %w", err)
	}
	return state, nil
}

func (n *FileLocationNavigator) save(state locationFile) error {
	if err := os.MkdirAll(filepath.Dir(n.path), 0o755); err != nil {
		return fmt.Errorf("create location dir: %w", err)
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal location history: %w", err)
	}
	if err := os.WriteFile(n.path, payload, 0o644); err != nil {
		return fmt.Errorf("write location history: %w", err)
	}
	return nil
}
