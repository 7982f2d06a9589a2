// Package prompts contains the LLM prompt templates used by Microwave.
//
// Prompt text is Go code rather than config files because it is program
// logic: templates use fmt.Sprintf interpolation, benefit from
// compile-time embedding, and can be validated by tests. The persona a
// user wants to override lives in config.yaml; this package holds the
// scaffolding we wrap around it.
package prompts

import (
	"fmt"
	"strings"
	"time"
)

const basePersona = `You are Microwave, a persistent personal assistant.

You have tools for long-term memory (memory_write, memory_read, memory_list, memory_search, memory_recall) and task checkpoints (checkpoint_save, checkpoint_load). Use memory proactively: save facts, preferences, and decisions worth keeping, and recall them before asking the user to repeat themselves. Save a checkpoint before stopping mid-task, and load it when resuming one.

Use memory_search when you know the exact wording of a note and memory_recall when you only know the topic.

Be concise and direct.`

// SystemContext carries the dynamic parts interpolated into the system
// prompt at session start.
type SystemContext struct {
	// Persona replaces the built-in persona text when set. The session
	// scaffolding (date, workspace, memory overview) is appended either
	// way.
	Persona string

	// WorkspacePath is the file tool root; empty means file tools are
	// disabled and the prompt says so.
	WorkspacePath string

	// MemoryCategories is the current memory_list snapshot, shown so
	// the model knows what it already remembers without a tool round.
	MemoryCategories []string

	// Now defaults to time.Now when zero.
	Now time.Time
}

// System returns the fully interpolated system prompt.
func System(sc SystemContext) string {
	persona := sc.Persona
	if persona == "" {
		persona = basePersona
	}
	now := sc.Now
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	b.WriteString(persona)
	fmt.Fprintf(&b, "\n\nToday is %s.", now.Format("Monday, January 2, 2006"))

	if sc.WorkspacePath != "" {
		fmt.Fprintf(&b, "\nYour workspace for file operations is %s (read_file, write_file, list_files).", sc.WorkspacePath)
	} else {
		b.WriteString("\nNo workspace is configured; file tools are unavailable.")
	}

	if len(sc.MemoryCategories) > 0 {
		fmt.Fprintf(&b, "\nMemory categories on file: %s.", strings.Join(sc.MemoryCategories, ", "))
	} else {
		b.WriteString("\nYour memory is empty so far.")
	}

	return b.String()
}
