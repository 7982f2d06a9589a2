package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileTools provides file read/write/list capabilities confined to a
// workspace directory. With no workspace configured the tools are not
// registered at all.
type FileTools struct {
	workspacePath string
}

// NewFileTools creates a FileTools rooted at workspacePath.
func NewFileTools(workspacePath string) *FileTools {
	return &FileTools{workspacePath: workspacePath}
}

// Enabled returns true if file tools are available.
func (ft *FileTools) Enabled() bool {
	return ft.workspacePath != ""
}

// RegisterFileTools wires workspace file access into the registry. A
// nil or disabled FileTools registers nothing.
func RegisterFileTools(r *Registry, ft *FileTools) {
	if ft == nil || !ft.Enabled() {
		return
	}

	r.Register(&Tool{
		Name:        "read_file",
		Description: "Read a file from the workspace.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path relative to the workspace root",
				},
			},
			"required": []string{"path"},
		},
		Handler: ft.handleRead,
	})

	r.Register(&Tool{
		Name:        "write_file",
		Description: "Write content to a file in the workspace, creating parent directories as needed. Overwrites the file if it exists.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path relative to the workspace root",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "The file content to write",
				},
			},
			"required": []string{"path", "content"},
		},
		Handler: ft.handleWrite,
	})

	r.Register(&Tool{
		Name:        "list_files",
		Description: "List files in a workspace directory.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Directory relative to the workspace root (default: the root itself)",
				},
			},
		},
		Handler: ft.handleList,
	})
}

// resolvePath converts a tool-supplied path to an absolute path inside
// the workspace. Returns an error if the path would escape it.
func (ft *FileTools) resolvePath(path string) (string, error) {
	if ft.workspacePath == "" {
		return "", fmt.Errorf("workspace not configured")
	}

	workspaceAbs, err := filepath.Abs(ft.workspacePath)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}

	var absPath string
	if filepath.IsAbs(path) {
		absPath = filepath.Clean(path)
	} else {
		absPath = filepath.Clean(filepath.Join(workspaceAbs, path))
	}

	if absPath != workspaceAbs && !strings.HasPrefix(absPath, workspaceAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes workspace: %s", path)
	}
	return absPath, nil
}

func (ft *FileTools) handleRead(ctx context.Context, args map[string]any) (string, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return "", err
	}
	absPath, err := ft.resolvePath(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("read file: %w", err)
	}

	content := string(data)
	const maxBytes = 50 * 1024
	if len(content) > maxBytes {
		content = content[:maxBytes] + "\n\n[... truncated ...]"
	}
	return content, nil
}

func (ft *FileTools) handleWrite(ctx context.Context, args map[string]any) (string, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return "", err
	}
	content, ok := args["content"].(string)
	if !ok {
		return "", fmt.Errorf("content is required")
	}
	absPath, err := ft.resolvePath(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), path), nil
}

func (ft *FileTools) handleList(ctx context.Context, args map[string]any) (string, error) {
	path := optStringArg(args, "path", ".")
	absPath, err := ft.resolvePath(path)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory not found: %s", path)
		}
		return "", fmt.Errorf("read directory: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Sprintf("Directory '%s' is empty.", path), nil
	}

	var b strings.Builder
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		fmt.Fprintf(&b, "%s\n", name)
	}
	return b.String(), nil
}
