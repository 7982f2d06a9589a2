// Package config handles Microwave configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/microwave/config.yaml, /etc/microwave/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "microwave", "config.yaml"))
	}

	paths = append(paths, "/etc/microwave/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Microwave configuration.
type Config struct {
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Session   SessionConfig   `yaml:"session"`
	Recall    RecallConfig    `yaml:"recall"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
}

// OpenAIConfig defines the completion and embedding service settings.
// Any OpenAI-compatible endpoint works; only the chat completions and
// embeddings routes are used.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// SessionConfig bounds the live conversation window.
type SessionConfig struct {
	// MaxMessages is the number of non-system messages retained after
	// trimming. The system prompt is always kept in addition to these.
	MaxMessages int `yaml:"max_messages"`

	// SystemPrompt overrides the built-in persona when set.
	SystemPrompt string `yaml:"system_prompt"`
}

// RecallConfig sets semantic memory search defaults. These are
// passthrough defaults rather than tuned constants; the model may
// request a different top_k per call.
type RecallConfig struct {
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`
}

// WorkspaceConfig defines the agent's workspace for file operations.
type WorkspaceConfig struct {
	// Path is the root directory for file tool operations. All file
	// tool paths are resolved inside this directory. If empty, file
	// tools are disabled.
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file. Environment variable
// references (${OPENAI_API_KEY} and friends) are expanded before
// parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Workspace.Path = expandHome(cfg.Workspace.Path)
	return cfg, nil
}

// expandHome expands a leading tilde to the user's home directory so
// paths like ~/microwave work in the YAML.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
		Session: SessionConfig{MaxMessages: 20},
		Recall:  RecallConfig{TopK: 3, Threshold: 0.3},
		DataDir: "data",
	}
}
