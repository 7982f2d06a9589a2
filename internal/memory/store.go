// Package memory provides the agent's durable note storage: one
// markdown file per category, accumulated in timestamped blocks.
// Anything the agent needs beyond the live context window lives here.
package memory

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when reading a category that was never written.
var ErrNotFound = errors.New("memory category not found")

// Mode selects write semantics.
type Mode string

const (
	// ModeAppend adds a new timestamped block to the existing note,
	// creating it if absent.
	ModeAppend Mode = "append"

	// ModeOverwrite replaces the note's entire contents with a single
	// fresh block.
	ModeOverwrite Mode = "overwrite"
)

// timestampLayout stamps each block heading.
const timestampLayout = "2006-01-02 15:04"

// Store is a file-backed note store. One category maps to one
// <category>.md file under the store directory. Single-writer,
// single-process access is assumed.
type Store struct {
	dir    string
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewStore creates a note store rooted at dir, creating the directory
// if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}
	return &Store{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Sanitize maps a requested category name to the identifier actually
// used on disk: path separators and other unsafe characters become
// underscores, and a trailing ".md" is stripped. The resolved name is
// what Write reports back so the model learns the real identifier.
func Sanitize(category string) string {
	category = strings.TrimSpace(category)
	category = strings.TrimSuffix(category, ".md")

	var b strings.Builder
	for _, r := range category {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "untitled"
	}
	return name
}

func (s *Store) path(category string) (string, string) {
	name := Sanitize(category)
	return name, filepath.Join(s.dir, name+".md")
}

// Receipt reports what a Write actually did: the resolved category
// identifier and the timestamp stamped onto the block. The embedding
// index reuses both so its records line up with the note.
type Receipt struct {
	Category  string
	Timestamp string
}

// Write stores body under category. Append mode adds a timestamped
// block onto the existing note; overwrite mode replaces the note with
// a title line and a single fresh block.
func (s *Store) Write(category, body string, mode Mode) (Receipt, error) {
	name, path := s.path(category)
	stamp := s.now().Format(timestampLayout)
	block := fmt.Sprintf("\n## [%s]\n%s\n", stamp, body)
	receipt := Receipt{Category: name, Timestamp: stamp}

	switch mode {
	case ModeOverwrite:
		content := fmt.Sprintf("# %s\n%s", name, block)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return Receipt{}, fmt.Errorf("overwrite %s: %w", name, err)
		}
	case ModeAppend, "":
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return Receipt{}, fmt.Errorf("open %s for append: %w", name, err)
		}
		if _, err := f.WriteString(block); err != nil {
			f.Close()
			return Receipt{}, fmt.Errorf("append to %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return Receipt{}, fmt.Errorf("close %s: %w", name, err)
		}
	default:
		return Receipt{}, fmt.Errorf("unknown write mode %q", mode)
	}

	s.logger.Debug("memory written", "category", name, "mode", mode, "bytes", len(body))
	return receipt, nil
}

// Read returns the full note for a category, or ErrNotFound if the
// category was never written. The open itself decides existence; there
// is no separate stat check.
func (s *Store) Read(category string) (string, error) {
	name, path := s.path(category)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// List returns all category identifiers in directory enumeration
// order. The order is not part of the contract.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list memory dir: %w", err)
	}

	var categories []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		categories = append(categories, strings.TrimSuffix(e.Name(), ".md"))
	}
	return categories, nil
}

// SearchResult pairs a matched category with its full note text.
type SearchResult struct {
	Category string
	Note     string
}

// Search performs a case-insensitive substring match of query against
// the full note body of every category. A matching category returns
// its entire note, not just the matching fragment. An empty result
// means nothing matched; the caller decides how to phrase that.
func (s *Store) Search(query string) ([]SearchResult, error) {
	categories, err := s.List()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var results []SearchResult
	for _, cat := range categories {
		note, err := s.Read(cat)
		if err != nil {
			// A file removed between List and Read just doesn't match.
			continue
		}
		if strings.Contains(strings.ToLower(note), needle) {
			results = append(results, SearchResult{Category: cat, Note: note})
		}
	}
	return results, nil
}
