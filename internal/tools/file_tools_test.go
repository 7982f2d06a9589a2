package tools

import (
	"context"
	"strings"
	"testing"
)

func fileRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nil)
	RegisterFileTools(r, NewFileTools(t.TempDir()))
	return r
}

func TestFileWriteReadListDispatch(t *testing.T) {
	r := fileRegistry(t)
	ctx := context.Background()

	got := r.Dispatch(ctx, "write_file", map[string]any{
		"path":    "notes/todo.txt",
		"content": "buy milk",
	})
	if !strings.Contains(got, "todo.txt") {
		t.Errorf("write_file = %q, want confirmation", got)
	}

	got = r.Dispatch(ctx, "read_file", map[string]any{"path": "notes/todo.txt"})
	if got != "buy milk" {
		t.Errorf("read_file = %q, want buy milk", got)
	}

	got = r.Dispatch(ctx, "list_files", map[string]any{"path": "notes"})
	if !strings.Contains(got, "todo.txt") {
		t.Errorf("list_files = %q, want todo.txt", got)
	}
}

func TestFilePathEscape(t *testing.T) {
	r := fileRegistry(t)

	got := r.Dispatch(context.Background(), "read_file", map[string]any{"path": "../../etc/passwd"})
	if !strings.Contains(got, "escapes workspace") {
		t.Errorf("read_file = %q, want escape rejection", got)
	}
}

func TestFileReadMissing(t *testing.T) {
	r := fileRegistry(t)

	got := r.Dispatch(context.Background(), "read_file", map[string]any{"path": "missing.txt"})
	if !strings.Contains(got, "file not found") {
		t.Errorf("read_file = %q, want not-found text", got)
	}
}

func TestFileToolsDisabledWithoutWorkspace(t *testing.T) {
	r := NewRegistry(nil)
	RegisterFileTools(r, NewFileTools(""))

	if names := r.Names(); len(names) != 0 {
		t.Errorf("Names() = %v, want no file tools without a workspace", names)
	}
}
