package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestCatalogOrder(t *testing.T) {
	r := NewRegistry(nil)
	names := []string{"alpha", "beta", "gamma"}
	for _, name := range names {
		r.Register(&Tool{
			Name:       name,
			Parameters: map[string]any{"type": "object"},
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return "", nil
			},
		})
	}

	catalog := r.Catalog()
	if len(catalog) != len(names) {
		t.Fatalf("Catalog() has %d entries, want %d", len(catalog), len(names))
	}
	for i, entry := range catalog {
		fn, ok := entry["function"].(map[string]any)
		if !ok {
			t.Fatalf("catalog entry %d missing function object", i)
		}
		if fn["name"] != names[i] {
			t.Errorf("catalog[%d] = %v, want %s", i, fn["name"], names[i])
		}
	}
}

func TestRegisterReplacesKeepingPosition(t *testing.T) {
	r := NewRegistry(nil)
	handler := func(ctx context.Context, args map[string]any) (string, error) {
		return "v2", nil
	}
	r.Register(&Tool{Name: "a", Handler: handler})
	r.Register(&Tool{Name: "b", Handler: handler})
	r.Register(&Tool{Name: "a", Handler: handler})

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry(nil)

	got := r.Dispatch(context.Background(), "teleport", nil)
	if !strings.Contains(got, "unknown tool 'teleport'") {
		t.Errorf("Dispatch() = %q, want unknown-tool text", got)
	}
}

func TestDispatchHandlerError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Tool{
		Name: "broken",
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return "", fmt.Errorf("disk on fire")
		},
	})

	got := r.Dispatch(context.Background(), "broken", nil)
	if !strings.Contains(got, "Error executing broken") || !strings.Contains(got, "disk on fire") {
		t.Errorf("Dispatch() = %q, want error text with cause", got)
	}
}

func TestDispatchSuccess(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Tool{
		Name: "echo",
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			s, _ := args["text"].(string)
			return s, nil
		},
	})

	got := r.Dispatch(context.Background(), "echo", map[string]any{"text": "hello"})
	if got != "hello" {
		t.Errorf("Dispatch() = %q, want hello", got)
	}
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"name":  "widget",
		"count": float64(7),
		"items": []any{"a", "b", 3, "c"},
	}

	if v, err := stringArg(args, "name"); err != nil || v != "widget" {
		t.Errorf("stringArg(name) = %q, %v", v, err)
	}
	if _, err := stringArg(args, "missing"); err == nil {
		t.Error("stringArg(missing) succeeded, want error")
	}
	if v := optIntArg(args, "count", 1); v != 7 {
		t.Errorf("optIntArg(count) = %d, want 7 (JSON numbers arrive as float64)", v)
	}
	if v := optIntArg(args, "missing", 42); v != 42 {
		t.Errorf("optIntArg(missing) = %d, want default 42", v)
	}
	if v := stringListArg(args, "items"); len(v) != 3 || v[0] != "a" || v[2] != "c" {
		t.Errorf("stringListArg(items) = %v, want non-string entries skipped", v)
	}
}
