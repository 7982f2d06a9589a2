package tools

import (
	"context"
	"strings"
	"testing"
)

func TestCalculatorDispatch(t *testing.T) {
	r := NewRegistry(nil)
	RegisterUtilTools(r)
	ctx := context.Background()

	got := r.Dispatch(ctx, "calculator", map[string]any{"expression": "2 * (3 + 4)"})
	if !strings.Contains(got, "= 14") {
		t.Errorf("calculator = %q, want result 14", got)
	}

	got = r.Dispatch(ctx, "calculator", map[string]any{"expression": "1 / 0"})
	if !strings.Contains(got, "Error executing calculator") {
		t.Errorf("calculator = %q, want division error as text", got)
	}
}

func TestCurrentTimeDispatch(t *testing.T) {
	r := NewRegistry(nil)
	RegisterUtilTools(r)

	got := r.Dispatch(context.Background(), "get_current_time", nil)
	// YYYY-MM-DD HH:MM:SS
	if len(got) != 19 || got[4] != '-' || got[10] != ' ' || got[13] != ':' {
		t.Errorf("get_current_time = %q, want YYYY-MM-DD HH:MM:SS", got)
	}
}
