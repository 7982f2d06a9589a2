// Package llm defines the completion and embedding service contracts
// and provides an OpenAI-compatible HTTP client implementation.
package llm

import (
	"context"
	"time"
)

// Message represents a chat message.
//
// The first message of a session is always role "system". Assistant
// messages may carry ToolCalls (and then Content may be empty); tool
// messages carry the ToolCallID they answer. Order is significant.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Roles used in Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall represents a tool invocation requested by the model. The ID
// is assigned by the completion service and must be echoed back on the
// corresponding tool result message.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries its decoded arguments.
// Wire-format conversion (OpenAI sends arguments as a JSON string)
// happens at the provider boundary.
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ChatResponse is the unified response from the completion service.
type ChatResponse struct {
	Model     string
	CreatedAt time.Time
	Message   Message

	// Token usage (provider-neutral)
	InputTokens  int
	OutputTokens int
}

// Client is the completion capability the agent core depends on.
// Implementations send the full message history plus the tool catalog
// and return one model turn; tool selection is left to the service.
type Client interface {
	Chat(ctx context.Context, messages []Message, tools []map[string]any) (*ChatResponse, error)
}

// Embedder is the embedding capability. All vectors returned within
// one index's lifetime have the same length.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
