package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/microwavehq/microwave-agent/internal/calc"
)

// RegisterUtilTools wires the clock and calculator tools into the
// registry.
func RegisterUtilTools(r *Registry) {
	r.Register(&Tool{
		Name:        "get_current_time",
		Description: "Get the current local date and time.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: handleCurrentTime,
	})

	r.Register(&Tool{
		Name:        "calculator",
		Description: "Evaluate an arithmetic expression. Supports + - * / % ^, parentheses, constants pi and e, and functions like sqrt, sin, cos, log, pow, min, max.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "The expression to evaluate (e.g., '2 * (3 + 4)', 'sqrt(2) / 2')",
				},
			},
			"required": []string{"expression"},
		},
		Handler: handleCalculator,
	})
}

func handleCurrentTime(ctx context.Context, args map[string]any) (string, error) {
	return time.Now().Format("2006-01-02 15:04:05"), nil
}

func handleCalculator(ctx context.Context, args map[string]any) (string, error) {
	expr, err := stringArg(args, "expression")
	if err != nil {
		return "", err
	}

	result, err := calc.Eval(expr)
	if err != nil {
		return "", fmt.Errorf("cannot evaluate %q: %w", expr, err)
	}
	return fmt.Sprintf("%s = %g", expr, result), nil
}
