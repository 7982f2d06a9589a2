// Microwave is a persistent personal AI assistant.
//
// It talks to any OpenAI-compatible API and carries its own long-term
// memory: timestamped markdown notes with a semantic embedding index,
// a single-slot task checkpoint, and a SQLite archive of every session
// transcript. Configuration is loaded from a single YAML file
// discovered automatically (see [config.DefaultSearchPaths]); secrets
// can live in a .env file next to the binary.
//
// Usage:
//
//	microwave chat               Start an interactive session
//	microwave ask <question>     Ask a single question and exit
//	microwave sessions           List archived sessions
//	microwave show <session-id>  Print an archived transcript
//	microwave version            Print version and build information
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/microwavehq/microwave-agent/internal/agent"
	"github.com/microwavehq/microwave-agent/internal/archive"
	"github.com/microwavehq/microwave-agent/internal/buildinfo"
	"github.com/microwavehq/microwave-agent/internal/checkpoint"
	"github.com/microwavehq/microwave-agent/internal/config"
	"github.com/microwavehq/microwave-agent/internal/embeddings"
	"github.com/microwavehq/microwave-agent/internal/llm"
	"github.com/microwavehq/microwave-agent/internal/memory"
	"github.com/microwavehq/microwave-agent/internal/prompts"
	"github.com/microwavehq/microwave-agent/internal/tools"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run] so the full
// lifecycle can be driven from tests.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the microwave command. Arguments are
// parsed by hand; the flag package's package-level state gets in the
// way of calling run concurrently from tests, and the surface here is
// small.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	var configPath string
	var outputFmt string
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "chat":
		return runChat(ctx, stdin, stdout, configPath)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: microwave ask <question>")
		}
		return runAsk(ctx, stdout, configPath, strings.Join(cmdArgs, " "))
	case "sessions":
		return runSessions(stdout, configPath)
	case "show":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: microwave show <session-id>")
		}
		return runShow(stdout, configPath, cmdArgs[0])
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "Microwave - Persistent Personal AI Assistant")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: microwave [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  chat         Start an interactive session")
	fmt.Fprintln(w, "  ask          Ask a single question and exit")
	fmt.Fprintln(w, "  sessions     List archived sessions")
	fmt.Fprintln(w, "  show <id>    Print an archived session transcript")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./config.yaml, ~/.config/microwave/config.yaml, /etc/microwave/config.yaml")
	return nil
}

func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
}

// loadConfig locates and parses the YAML configuration. A missing
// config file is not fatal: defaults plus environment variables are
// enough to run against api.openai.com. A .env file, if present, is
// loaded first so ${VAR} references in the YAML resolve.
func loadConfig(explicit string) (*config.Config, string, error) {
	_ = godotenv.Load()

	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		if explicit != "" {
			return nil, "", err
		}
		return config.Default(), "", nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	return cfg, cfgPath, nil
}

// assistant bundles everything a running session needs.
type assistant struct {
	logger   *slog.Logger
	client   *llm.OpenAIClient
	registry *tools.Registry
	memory   *memory.Store
	archive  *archive.Store
	cfg      *config.Config
}

// buildAssistant opens the stores under the data directory and wires
// every tool into a registry. Logs go to logw.
func buildAssistant(logw io.Writer, configPath string) (*assistant, error) {
	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("no API key: set openai.api_key in config or OPENAI_API_KEY in the environment")
	}

	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		parsed, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	logger := newLogger(logw, level)
	if cfgPath != "" {
		logger.Info("config loaded", "path", cfgPath)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:        cfg.OpenAI.BaseURL,
		APIKey:         cfg.OpenAI.APIKey,
		Model:          cfg.OpenAI.Model,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		Logger:         logger,
	})

	memStore, err := memory.NewStore(filepath.Join(cfg.DataDir, "memory"), logger)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	index, err := embeddings.Open(filepath.Join(cfg.DataDir, "embeddings.json"), client, logger)
	if err != nil {
		return nil, fmt.Errorf("open embedding index: %w", err)
	}
	cpStore := checkpoint.NewStore(filepath.Join(cfg.DataDir, "checkpoint.json"))

	archiveStore, err := archive.Open(filepath.Join(cfg.DataDir, "archive.db"))
	if err != nil {
		return nil, fmt.Errorf("open session archive: %w", err)
	}

	registry := tools.NewRegistry(logger)
	tools.RegisterMemoryTools(registry, memStore, index, cfg.Recall.TopK, cfg.Recall.Threshold)
	tools.RegisterCheckpointTools(registry, cpStore)
	tools.RegisterFileTools(registry, tools.NewFileTools(cfg.Workspace.Path))
	tools.RegisterUtilTools(registry)
	logger.Debug("tools registered", "names", registry.Names())

	return &assistant{
		logger:   logger,
		client:   client,
		registry: registry,
		memory:   memStore,
		archive:  archiveStore,
		cfg:      cfg,
	}, nil
}

func (a *assistant) Close() {
	if err := a.archive.Close(); err != nil {
		a.logger.Warn("close archive", "error", err)
	}
}

func (a *assistant) newSession(sessionID string) *agent.Session {
	var transcript agent.Transcript
	if sessionID != "" {
		transcript = a.archive
	}

	categories, err := a.memory.List()
	if err != nil {
		a.logger.Warn("list memory for prompt", "error", err)
	}
	prompt := prompts.System(prompts.SystemContext{
		Persona:          a.cfg.Session.SystemPrompt,
		WorkspacePath:    a.cfg.Workspace.Path,
		MemoryCategories: categories,
	})

	return agent.New(a.logger, a.client, a.registry, agent.Options{
		SystemPrompt: prompt,
		MaxMessages:  a.cfg.Session.MaxMessages,
		Transcript:   transcript,
		SessionID:    sessionID,
	})
}

// runChat drives the interactive loop. Each line of input is one turn;
// "exit" or "quit" (or EOF) ends the session.
func runChat(ctx context.Context, stdin io.Reader, stdout io.Writer, configPath string) error {
	a, err := buildAssistant(stdout, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID, err := a.archive.BeginSession()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.archive.EndSession(sessionID); err != nil {
			a.logger.Warn("end session", "error", err)
		}
	}()

	session := a.newSession(sessionID)
	fmt.Fprintf(stdout, "Microwave %s (session %s). Type 'exit' to quit.\n", buildinfo.Version, sessionID[:8])

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(stdout, "> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		reply, err := session.Send(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(stdout, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(stdout, "%s\n", reply)
	}

	fmt.Fprintf(stdout, "\nSession ended (%s).\n", session.Summary())
	return scanner.Err()
}

// runAsk boots the assistant, runs a single turn, and prints the
// answer. The turn is archived like any other session.
func runAsk(ctx context.Context, stdout io.Writer, configPath, question string) error {
	a, err := buildAssistant(stdout, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID, err := a.archive.BeginSession()
	if err != nil {
		return err
	}
	defer func() { _ = a.archive.EndSession(sessionID) }()

	session := a.newSession(sessionID)
	reply, err := session.Send(ctx, question)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Fprintln(stdout, reply)
	return nil
}

func runSessions(stdout io.Writer, configPath string) error {
	a, err := buildAssistant(stdout, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := a.archive.RecentSessions(20)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(stdout, "No archived sessions.")
		return nil
	}

	for _, s := range sessions {
		status := "open"
		if s.EndedAt != nil {
			status = s.EndedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(stdout, "%s  %s  %3d messages  ended %s\n",
			s.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), s.MessageCount, status)
	}
	return nil
}

func runShow(stdout io.Writer, configPath, sessionID string) error {
	a, err := buildAssistant(stdout, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	messages, err := a.archive.SessionMessages(sessionID)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return fmt.Errorf("no transcript for session %s", sessionID)
	}

	for _, m := range messages {
		switch {
		case len(m.ToolCalls) > 0:
			var names []string
			for _, c := range m.ToolCalls {
				names = append(names, c.Function.Name)
			}
			fmt.Fprintf(stdout, "[%s] -> tools: %s\n", m.Role, strings.Join(names, ", "))
		case m.Role == llm.RoleTool:
			fmt.Fprintf(stdout, "[%s:%s] %s\n", m.Role, m.ToolCallID, m.Content)
		default:
			fmt.Fprintf(stdout, "[%s] %s\n", m.Role, m.Content)
		}
	}
	return nil
}
