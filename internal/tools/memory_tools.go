package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microwavehq/microwave-agent/internal/embeddings"
	"github.com/microwavehq/microwave-agent/internal/memory"
)

// RegisterMemoryTools wires the note store and the semantic index into
// the registry. topK and threshold are the recall defaults; the model
// can override top_k per call.
func RegisterMemoryTools(r *Registry, store *memory.Store, index *embeddings.Index, topK int, threshold float64) {
	mt := &memoryTools{store: store, index: index, topK: topK, threshold: threshold}

	r.Register(&Tool{
		Name:        "memory_write",
		Description: "Save a note to persistent memory under a category. Use this for facts, preferences, and decisions worth remembering across sessions.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": map[string]any{
					"type":        "string",
					"description": "Category to file the note under (e.g., preferences, project_status)",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "The note text to save",
				},
				"mode": map[string]any{
					"type":        "string",
					"enum":        []string{"append", "overwrite"},
					"description": "append adds to the category (default); overwrite replaces it",
				},
			},
			"required": []string{"category", "content"},
		},
		Handler: mt.handleWrite,
	})

	r.Register(&Tool{
		Name:        "memory_read",
		Description: "Read the full contents of one memory category.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": map[string]any{
					"type":        "string",
					"description": "The category to read",
				},
			},
			"required": []string{"category"},
		},
		Handler: mt.handleRead,
	})

	r.Register(&Tool{
		Name:        "memory_list",
		Description: "List all memory categories.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: mt.handleList,
	})

	r.Register(&Tool{
		Name:        "memory_search",
		Description: "Search memory for an exact word or phrase. Returns every note containing the text. Use memory_recall for fuzzy, meaning-based lookup.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Text to search for (case-insensitive substring match)",
				},
			},
			"required": []string{"query"},
		},
		Handler: mt.handleSearch,
	})

	r.Register(&Tool{
		Name:        "memory_recall",
		Description: "Recall memories related to a topic by meaning, not exact wording. Use this when you don't know the exact phrase a note was saved with.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to recall (a topic or question)",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum results to return (default %d)", topK),
				},
			},
			"required": []string{"query"},
		},
		Handler: mt.handleRecall,
	})
}

type memoryTools struct {
	store     *memory.Store
	index     *embeddings.Index
	topK      int
	threshold float64
}

func (mt *memoryTools) handleWrite(ctx context.Context, args map[string]any) (string, error) {
	category, err := stringArg(args, "category")
	if err != nil {
		return "", err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return "", err
	}
	mode := memory.Mode(optStringArg(args, "mode", string(memory.ModeAppend)))

	rec, err := mt.store.Write(category, content, mode)
	if err != nil {
		return "", err
	}

	if mt.index != nil {
		if _, err := mt.index.Add(ctx, rec.Category, content, rec.Timestamp); err != nil {
			// The note is durable; only semantic recall misses it.
			return fmt.Sprintf("Saved to memory '%s', but semantic indexing failed: %v. The note is stored and searchable by exact text; it will not appear in semantic recall.", rec.Category, err), nil
		}
	}

	return fmt.Sprintf("Saved to memory '%s'.", rec.Category), nil
}

func (mt *memoryTools) handleRead(ctx context.Context, args map[string]any) (string, error) {
	category, err := stringArg(args, "category")
	if err != nil {
		return "", err
	}

	note, err := mt.store.Read(category)
	if errors.Is(err, memory.ErrNotFound) {
		return fmt.Sprintf("No memory named '%s'. Use memory_list to see what exists.", memory.Sanitize(category)), nil
	}
	if err != nil {
		return "", err
	}
	return note, nil
}

func (mt *memoryTools) handleList(ctx context.Context, args map[string]any) (string, error) {
	categories, err := mt.store.List()
	if err != nil {
		return "", err
	}
	if len(categories) == 0 {
		return "No memories stored yet.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Memory categories (%d):\n", len(categories))
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String(), nil
}

func (mt *memoryTools) handleSearch(ctx context.Context, args map[string]any) (string, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return "", err
	}

	results, err := mt.store.Search(query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return fmt.Sprintf("No memories found for '%s'.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found '%s' in %d memor%s:\n", query, len(results), plural(len(results), "y", "ies"))
	for _, res := range results {
		fmt.Fprintf(&b, "\n=== %s ===\n%s\n", res.Category, res.Note)
	}
	return b.String(), nil
}

func (mt *memoryTools) handleRecall(ctx context.Context, args map[string]any) (string, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return "", err
	}
	if mt.index == nil {
		return "Semantic recall is not available; use memory_search instead.", nil
	}
	if mt.index.Len() == 0 {
		return "No memories stored yet.", nil
	}

	k := optIntArg(args, "top_k", mt.topK)
	matches, err := mt.index.Query(ctx, query, k, mt.threshold)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return fmt.Sprintf("Nothing in memory seems related to '%s'.", query), nil
	}

	var b strings.Builder
	b.WriteString("Relevant memories:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "\n[%.2f] %s (%s)\n%s\n", m.Similarity, m.Record.Category, m.Record.Timestamp, m.Record.Body)
	}
	return b.String(), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
