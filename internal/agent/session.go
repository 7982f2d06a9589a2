// Package agent implements the core conversation loop.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/microwavehq/microwave-agent/internal/llm"
	"github.com/microwavehq/microwave-agent/internal/tools"
)

// DefaultMaxMessages is how many non-system messages the context
// window keeps when no limit is configured.
const DefaultMaxMessages = 20

// DefaultSystemPrompt is the fallback when no prompt is supplied. The
// full persona with session context is assembled by the prompts
// package; this only keeps a bare Session usable on its own.
const DefaultSystemPrompt = "You are Microwave, a persistent personal assistant. Use your tools for memory and checkpoints; be concise and direct."

// Transcript records messages for later review. The archive store
// satisfies this; tests substitute their own.
type Transcript interface {
	AppendMessage(sessionID string, msg llm.Message) error
}

// Options configures a Session.
type Options struct {
	SystemPrompt string
	MaxMessages  int
	Transcript   Transcript
	SessionID    string
}

// Session is one conversation with the model. It owns the message
// window, drives the tool loop, and is not safe for concurrent use.
type Session struct {
	logger      *slog.Logger
	client      llm.Client
	registry    *tools.Registry
	maxMessages int
	messages    []llm.Message
	transcript  Transcript
	sessionID   string
}

// New creates a session seeded with the system prompt.
func New(logger *slog.Logger, client llm.Client, registry *tools.Registry, opts Options) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	maxMessages := opts.MaxMessages
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}

	s := &Session{
		logger:      logger,
		client:      client,
		registry:    registry,
		maxMessages: maxMessages,
		transcript:  opts.Transcript,
		sessionID:   opts.SessionID,
	}
	system := llm.Message{Role: llm.RoleSystem, Content: prompt}
	s.messages = append(s.messages, system)
	s.record(system)
	return s
}

// Send runs one user turn to completion: the model may request any
// number of tool rounds before producing the text that comes back to
// the user. Tool failures never abort the turn; they flow back to the
// model as tool output. Only transport and decode failures surface as
// errors, leaving the conversation as it was before the call that
// failed.
func (s *Session) Send(ctx context.Context, input string) (string, error) {
	user := llm.Message{Role: llm.RoleUser, Content: input}
	s.messages = append(s.messages, user)
	s.record(user)

	for {
		s.trim()

		resp, err := s.client.Chat(ctx, s.messages, s.registry.Catalog())
		if err != nil {
			return "", fmt.Errorf("chat: %w", err)
		}

		assistant := resp.Message
		s.messages = append(s.messages, assistant)
		s.record(assistant)

		if len(assistant.ToolCalls) == 0 {
			return assistant.Content, nil
		}

		s.logger.Debug("model requested tools", "count", len(assistant.ToolCalls))
		for _, call := range assistant.ToolCalls {
			result := s.registry.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
			toolMsg := llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			}
			s.messages = append(s.messages, toolMsg)
			s.record(toolMsg)
		}
	}
}

// Messages returns a copy of the current window.
func (s *Session) Messages() []llm.Message {
	out := make([]llm.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// trim drops the oldest non-system messages once the window exceeds
// the limit. The system prompt always survives.
func (s *Session) trim() {
	if len(s.messages) <= s.maxMessages+1 {
		return
	}
	if s.messages[0].Role != llm.RoleSystem {
		s.messages = s.messages[len(s.messages)-s.maxMessages:]
		return
	}

	dropped := len(s.messages) - 1 - s.maxMessages
	kept := make([]llm.Message, 0, s.maxMessages+1)
	kept = append(kept, s.messages[0])
	kept = append(kept, s.messages[1+dropped:]...)
	s.messages = kept
	s.logger.Debug("trimmed context window", "dropped", dropped, "kept", len(s.messages))
}

func (s *Session) record(msg llm.Message) {
	if s.transcript == nil || s.sessionID == "" {
		return
	}
	if err := s.transcript.AppendMessage(s.sessionID, msg); err != nil {
		s.logger.Warn("transcript append failed", "error", err, "role", msg.Role)
	}
}

// Summary renders a short one-line description of the window for
// status output.
func (s *Session) Summary() string {
	counts := map[string]int{}
	for _, m := range s.messages {
		counts[m.Role]++
	}
	var parts []string
	for _, role := range []string{llm.RoleSystem, llm.RoleUser, llm.RoleAssistant, llm.RoleTool} {
		if counts[role] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[role], role))
		}
	}
	return strings.Join(parts, ", ")
}
