// Package checkpoint persists a single-slot snapshot of in-progress
// task state. Each save replaces the prior checkpoint wholesale; there
// is no history.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned by Load when no checkpoint has been saved.
var ErrNotFound = errors.New("no checkpoint found")

// Checkpoint is the persisted task-state snapshot.
type Checkpoint struct {
	Timestamp time.Time `json:"timestamp"`
	Task      string    `json:"task"`
	Status    string    `json:"status"`
	Completed []string  `json:"completed"`
	NextSteps []string  `json:"next_steps"`
	Blockers  string    `json:"blockers,omitempty"`
}

// Store handles checkpoint persistence at a fixed path.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a checkpoint store writing to path. The parent
// directory must exist.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Save atomically replaces the checkpoint slot. Completed and
// nextSteps may be nil; they are stored as empty lists.
func (s *Store) Save(task, status string, completed, nextSteps []string, blockers string) (*Checkpoint, error) {
	if completed == nil {
		completed = []string{}
	}
	if nextSteps == nil {
		nextSteps = []string{}
	}

	cp := &Checkpoint{
		Timestamp: s.now().UTC(),
		Task:      task,
		Status:    status,
		Completed: completed,
		NextSteps: nextSteps,
		Blockers:  blockers,
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".checkpoint-*")
	if err != nil {
		return nil, fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("replace checkpoint: %w", err)
	}

	return cp, nil
}

// Load returns the last saved checkpoint verbatim, or ErrNotFound if
// none has ever been saved. Existence is decided by the open itself.
func (s *Store) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	return &cp, nil
}
