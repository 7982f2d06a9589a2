// Package tools defines the tools available to the agent.
package tools

import (
	"context"
	"fmt"
	"log/slog"
)

// Tool represents a callable tool.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Handler     func(ctx context.Context, args map[string]any) (string, error) `json:"-"`
}

// Registry holds available tools. Catalog order is registration order,
// so the model sees a stable tool list across turns.
type Registry struct {
	logger *slog.Logger
	tools  map[string]*Tool
	order  []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		tools:  make(map[string]*Tool),
	}
}

// Register adds a tool to the registry. Re-registering a name replaces
// the earlier tool without changing its catalog position.
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Catalog returns all tools in the function-calling schema the model
// expects.
func (r *Registry) Catalog() []map[string]any {
	var result []map[string]any
	for _, name := range r.order {
		t := r.tools[name]
		result = append(result, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	return result
}

// Dispatch runs a tool by name with decoded arguments. It never fails:
// unknown tools, bad arguments, and handler errors all come back as
// text so the model can read what went wrong and carry on.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) string {
	tool := r.tools[name]
	if tool == nil {
		r.logger.Warn("model requested unknown tool", "tool", name)
		return fmt.Sprintf("Error: unknown tool '%s'", name)
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", name, "error", err)
		return fmt.Sprintf("Error executing %s: %v", name, err)
	}

	r.logger.Debug("tool executed", "tool", name, "result_bytes", len(result))
	return result
}

// Argument helpers. The model sends JSON, so numbers arrive as float64
// and lists as []any regardless of the declared schema type.

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func optStringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func optIntArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func stringListArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
