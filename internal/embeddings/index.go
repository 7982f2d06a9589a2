// Package embeddings provides the semantic memory index: an
// append-only log of (text, vector) records with cosine similarity
// search. The log is a single JSON file rewritten wholesale on each
// append, which is fine at the target scale of thousands of records
// and does not pretend to be a vector database.
package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/microwavehq/microwave-agent/internal/llm"
)

// Query defaults. Passthrough values, not tuned constants.
const (
	DefaultTopK      = 3
	DefaultThreshold = 0.3
)

// Record is one indexed memory entry. Category, Body, and Timestamp
// mirror the note block the record was derived from; the note store
// and the index are independently durable and may diverge if one
// write half-fails.
type Record struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Body      string    `json:"body"`
	Timestamp string    `json:"timestamp"`
	Vector    []float32 `json:"vector"`
}

// Match is a query hit with its similarity score.
type Match struct {
	Similarity float32
	Record     Record
}

// indexFile is the on-disk JSON shape.
type indexFile struct {
	Entries []Record `json:"entries"`
}

// Index is a durable embedding log. Single-writer, single-process;
// the full record set is held in memory and scanned linearly.
type Index struct {
	path     string
	embedder llm.Embedder
	logger   *slog.Logger
	records  []Record
}

// Open loads the index at path, creating an empty one if the file
// does not exist yet.
func Open(path string, embedder llm.Embedder, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ix := &Index{path: path, embedder: embedder, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ix, nil
		}
		return nil, fmt.Errorf("read embedding log: %w", err)
	}

	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse embedding log: %w", err)
	}
	ix.records = f.Entries
	return ix, nil
}

// Len returns the number of indexed records. Callers use it to tell
// "no memories exist yet" apart from "nothing matched".
func (ix *Index) Len() int {
	return len(ix.records)
}

// Add embeds body and appends a record to the log. An embedding
// failure leaves the log untouched; the caller reports that the
// underlying note write (if any) still succeeded.
func (ix *Index) Add(ctx context.Context, category, body, timestamp string) (Record, error) {
	vec, err := ix.embedder.Embed(ctx, body)
	if err != nil {
		return Record{}, fmt.Errorf("embed: %w", err)
	}

	rec := Record{
		ID:        uuid.NewString(),
		Category:  category,
		Body:      body,
		Timestamp: timestamp,
		Vector:    vec,
	}
	ix.records = append(ix.records, rec)

	if err := ix.save(); err != nil {
		// Roll the in-memory append back so memory matches disk.
		ix.records = ix.records[:len(ix.records)-1]
		return Record{}, err
	}

	ix.logger.Debug("embedding indexed", "category", category, "dims", len(vec), "total", len(ix.records))
	return rec, nil
}

// save rewrites the whole log as a unit: marshal, write a temp file,
// rename over the old log.
func (ix *Index) save() error {
	data, err := json.Marshal(indexFile{Entries: ix.records})
	if err != nil {
		return fmt.Errorf("marshal embedding log: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(ix.path), ".embeddings-*")
	if err != nil {
		return fmt.Errorf("create temp log: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp log: %w", err)
	}
	if err := os.Rename(tmpName, ix.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace embedding log: %w", err)
	}
	return nil
}

// Query embeds text and returns up to k records scoring at or above
// threshold, ordered by non-increasing similarity. Ties keep original
// insertion order. k <= 0 uses DefaultTopK. An empty index returns no
// matches without calling the embedder.
func (ix *Index) Query(ctx context.Context, text string, k int, threshold float64) ([]Match, error) {
	if len(ix.records) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	qv, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches := make([]Match, len(ix.records))
	for i, rec := range ix.records {
		matches[i] = Match{
			Similarity: Cosine(qv, rec.Vector),
			Record:     rec,
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	kept := matches[:0]
	for _, m := range matches {
		if float64(m.Similarity) >= threshold {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// Cosine computes cosine similarity between two vectors: the dot
// product over the product of magnitudes, in [-1, 1]. Mismatched
// lengths or a zero vector score 0.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
