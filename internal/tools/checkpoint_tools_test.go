package tools

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/microwavehq/microwave-agent/internal/checkpoint"
)

func checkpointRegistry(t *testing.T) *Registry {
	t.Helper()
	store := checkpoint.NewStore(filepath.Join(t.TempDir(), "checkpoint.json"))
	r := NewRegistry(nil)
	RegisterCheckpointTools(r, store)
	return r
}

func TestCheckpointLoadEmpty(t *testing.T) {
	r := checkpointRegistry(t)

	got := r.Dispatch(context.Background(), "checkpoint_load", nil)
	if got != "No checkpoint found." {
		t.Errorf("checkpoint_load = %q, want no-checkpoint text", got)
	}
}

func TestCheckpointSaveLoadDispatch(t *testing.T) {
	r := checkpointRegistry(t)
	ctx := context.Background()

	got := r.Dispatch(ctx, "checkpoint_save", map[string]any{
		"task":       "refactor parser",
		"status":     "in_progress",
		"completed":  []any{"wrote grammar"},
		"next_steps": []any{"add tests", "wire into registry"},
		"blockers":   "waiting on review",
	})
	if !strings.Contains(got, "Checkpoint saved: refactor parser (in_progress)") {
		t.Errorf("checkpoint_save = %q, want confirmation", got)
	}
	// The confirmation carries the saved checkpoint's timestamp.
	if !regexp.MustCompile(`at \d{4}-\d{2}-\d{2} \d{2}:\d{2}`).MatchString(got) {
		t.Errorf("checkpoint_save = %q, want saved timestamp in confirmation", got)
	}

	got = r.Dispatch(ctx, "checkpoint_load", nil)
	for _, want := range []string{"refactor parser", "in_progress", "wrote grammar", "add tests", "waiting on review"} {
		if !strings.Contains(got, want) {
			t.Errorf("checkpoint_load = %q, missing %q", got, want)
		}
	}
}

func TestCheckpointSaveRequiresTask(t *testing.T) {
	r := checkpointRegistry(t)

	got := r.Dispatch(context.Background(), "checkpoint_save", map[string]any{"status": "done"})
	if !strings.Contains(got, "task is required") {
		t.Errorf("checkpoint_save = %q, want validation text", got)
	}
}
