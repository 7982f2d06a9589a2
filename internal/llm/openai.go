package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/microwavehq/microwave-agent/internal/config"
	"github.com/microwavehq/microwave-agent/internal/httpkit"
)

// OpenAIClient talks to an OpenAI-compatible API. It implements both
// [Client] (chat completions) and [Embedder] (embeddings). Only those
// two routes are used, so local gateways (Ollama's /v1, llama.cpp,
// LiteLLM) work as well as the hosted API.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	httpClient *http.Client
	logger     *slog.Logger
}

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	BaseURL        string // e.g. "https://api.openai.com/v1"
	APIKey         string
	Model          string // chat model (e.g. "gpt-4o-mini")
	EmbeddingModel string // e.g. "text-embedding-3-small"
	Logger         *slog.Logger
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &OpenAIClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		embedModel: cfg.EmbeddingModel,
		httpClient: httpkit.NewClient(
			// Tool-heavy completions against large models need time.
			httpkit.WithTimeout(5 * time.Minute),
		),
		logger: cfg.Logger,
	}
}

// wireMessage is the chat completions message format. Tool call
// arguments travel as a JSON string on the wire.
type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatRequest struct {
	Model      string           `json:"model"`
	Messages   []wireMessage    `json:"messages"`
	Tools      []map[string]any `json:"tools,omitempty"`
	ToolChoice string           `json:"tool_choice,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat sends the full message history and tool catalog, returning one
// model turn. Tool selection is advisory (tool_choice=auto): the model
// may request zero or more tool calls.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, tools []map[string]any) (*ChatResponse, error) {
	req := chatRequest{
		Model:    c.model,
		Messages: toWire(messages),
		Tools:    tools,
	}
	if len(tools) > 0 {
		req.ToolChoice = "auto"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	c.logger.Log(ctx, config.LevelTrace, "chat request", "payload", string(body))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody := httpkit.ReadErrorBody(resp.Body, 512)
		return nil, fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, errBody)
	}

	var wire chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(wire.Choices) == 0 {
		return nil, fmt.Errorf("completion API returned no choices")
	}

	msg, err := fromWire(wire.Choices[0].Message)
	if err != nil {
		return nil, err
	}

	return &ChatResponse{
		Model:        wire.Model,
		CreatedAt:    time.Unix(wire.Created, 0),
		Message:      msg,
		InputTokens:  wire.Usage.PromptTokens,
		OutputTokens: wire.Usage.CompletionTokens,
	}, nil
}

// toWire converts messages to the chat completions format, encoding
// tool call arguments as JSON strings.
func toWire(messages []Message) []wireMessage {
	out := make([]wireMessage, len(messages))
	for i, m := range messages {
		w := wireMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			wtc := wireToolCall{ID: tc.ID, Type: "function"}
			wtc.Function.Name = tc.Function.Name
			args, err := json.Marshal(tc.Function.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			wtc.Function.Arguments = string(args)
			w.ToolCalls = append(w.ToolCalls, wtc)
		}
		out[i] = w
	}
	return out
}

// fromWire converts a chat completions message, decoding tool call
// argument strings into maps. A malformed arguments payload fails the
// whole turn; the session surfaces it as a transport error.
func fromWire(w wireMessage) (Message, error) {
	m := Message{
		Role:       w.Role,
		Content:    w.Content,
		ToolCallID: w.ToolCallID,
	}
	for _, wtc := range w.ToolCalls {
		tc := ToolCall{ID: wtc.ID}
		tc.Function.Name = wtc.Function.Name
		if wtc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(wtc.Function.Arguments), &tc.Function.Arguments); err != nil {
				return Message{}, fmt.Errorf("decode arguments for tool %q: %w", wtc.Function.Name, err)
			}
		}
		m.ToolCalls = append(m.ToolCalls, tc)
	}
	return m, nil
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed creates an embedding vector for the given text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.embedModel, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody := httpkit.ReadErrorBody(resp.Body, 512)
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, errBody)
	}

	var wire embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(wire.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	return wire.Data[0].Embedding, nil
}
