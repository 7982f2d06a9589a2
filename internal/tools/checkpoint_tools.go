package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microwavehq/microwave-agent/internal/checkpoint"
)

// RegisterCheckpointTools wires the single-slot task checkpoint into
// the registry.
func RegisterCheckpointTools(r *Registry, store *checkpoint.Store) {
	ct := &checkpointTools{store: store}

	r.Register(&Tool{
		Name:        "checkpoint_save",
		Description: "Save a snapshot of the current task so work can resume after an interruption. Saving replaces any earlier checkpoint.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task": map[string]any{
					"type":        "string",
					"description": "What you are working on",
				},
				"status": map[string]any{
					"type":        "string",
					"description": "Current status (e.g., in_progress, blocked, done)",
				},
				"completed": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Steps already finished",
				},
				"next_steps": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Steps still to do, in order",
				},
				"blockers": map[string]any{
					"type":        "string",
					"description": "Anything blocking progress",
				},
			},
			"required": []string{"task", "status"},
		},
		Handler: ct.handleSave,
	})

	r.Register(&Tool{
		Name:        "checkpoint_load",
		Description: "Load the saved task checkpoint, if any. Call this at the start of a session to pick up where you left off.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: ct.handleLoad,
	})
}

type checkpointTools struct {
	store *checkpoint.Store
}

func (ct *checkpointTools) handleSave(ctx context.Context, args map[string]any) (string, error) {
	task, err := stringArg(args, "task")
	if err != nil {
		return "", err
	}
	status, err := stringArg(args, "status")
	if err != nil {
		return "", err
	}
	completed := stringListArg(args, "completed")
	nextSteps := stringListArg(args, "next_steps")
	blockers := optStringArg(args, "blockers", "")

	cp, err := ct.store.Save(task, status, completed, nextSteps, blockers)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Checkpoint saved: %s (%s) at %s", cp.Task, cp.Status, cp.Timestamp.Format("2006-01-02 15:04")), nil
}

func (ct *checkpointTools) handleLoad(ctx context.Context, args map[string]any) (string, error) {
	cp, err := ct.store.Load()
	if errors.Is(err, checkpoint.ErrNotFound) {
		return "No checkpoint found.", nil
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Checkpoint from %s:\n", cp.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Task: %s\n", cp.Task)
	fmt.Fprintf(&b, "Status: %s\n", cp.Status)
	if len(cp.Completed) > 0 {
		b.WriteString("Completed:\n")
		for _, step := range cp.Completed {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}
	if len(cp.NextSteps) > 0 {
		b.WriteString("Next steps:\n")
		for _, step := range cp.NextSteps {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}
	if cp.Blockers != "" {
		fmt.Fprintf(&b, "Blockers: %s\n", cp.Blockers)
	}
	return b.String(), nil
}
