package memory

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := testStore(t)

	rec, err := s.Write("prefs", "favorite color is blue", ModeOverwrite)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if rec.Category != "prefs" {
		t.Errorf("Write() resolved category = %q, want prefs", rec.Category)
	}
	if rec.Timestamp == "" {
		t.Error("Write() receipt has empty timestamp")
	}

	note, err := s.Read("prefs")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !strings.Contains(note, "favorite color is blue") {
		t.Errorf("Read() = %q, want it to contain the body", note)
	}
	if got := strings.Count(note, "## ["); got != 1 {
		t.Errorf("Read() has %d timestamped blocks, want exactly 1", got)
	}
}

func TestAppendAccumulates(t *testing.T) {
	s := testStore(t)

	bodies := []string{"first fact", "second fact", "third fact"}
	for _, b := range bodies {
		if _, err := s.Write("facts", b, ModeAppend); err != nil {
			t.Fatalf("Write(%q) error: %v", b, err)
		}
	}

	note, err := s.Read("facts")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got := strings.Count(note, "## ["); got != len(bodies) {
		t.Errorf("note has %d blocks, want %d", got, len(bodies))
	}
	// Blocks appear in write order.
	last := -1
	for _, b := range bodies {
		idx := strings.Index(note, b)
		if idx < 0 {
			t.Fatalf("note missing body %q", b)
		}
		if idx < last {
			t.Errorf("body %q out of write order", b)
		}
		last = idx
	}
}

func TestOverwriteReplacesNote(t *testing.T) {
	s := testStore(t)

	if _, err := s.Write("plan", "old version", ModeAppend); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if _, err := s.Write("plan", "new version", ModeOverwrite); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	note, err := s.Read("plan")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if strings.Contains(note, "old version") {
		t.Errorf("note still contains overwritten content: %q", note)
	}
	if !strings.Contains(note, "new version") {
		t.Errorf("note missing new content: %q", note)
	}
	if !strings.HasPrefix(note, "# plan\n") {
		t.Errorf("overwritten note missing title line: %q", note)
	}
}

func TestTimestampBlockFormat(t *testing.T) {
	s := testStore(t)
	s.now = func() time.Time {
		return time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	}

	rec, err := s.Write("prefs", "body", ModeAppend)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if rec.Timestamp != "2026-08-28 14:30" {
		t.Errorf("receipt timestamp = %q, want 2026-08-28 14:30", rec.Timestamp)
	}
	note, err := s.Read("prefs")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !strings.Contains(note, "## [2026-08-28 14:30]") {
		t.Errorf("note = %q, want a [YYYY-MM-DD HH:MM] block heading", note)
	}
}

func TestReadMissingCategory(t *testing.T) {
	s := testStore(t)

	_, err := s.Read("never_written")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := testStore(t)

	if cats, err := s.List(); err != nil || len(cats) != 0 {
		t.Fatalf("List() on empty store = %v, %v; want empty, nil", cats, err)
	}

	for _, c := range []string{"alpha", "beta"} {
		if _, err := s.Write(c, "x", ModeAppend); err != nil {
			t.Fatalf("Write(%q) error: %v", c, err)
		}
	}

	cats, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("List() = %v, want 2 categories", cats)
	}
	seen := map[string]bool{}
	for _, c := range cats {
		seen[c] = true
	}
	if !seen["alpha"] || !seen["beta"] {
		t.Errorf("List() = %v, want alpha and beta", cats)
	}
}

func TestSearchCaseInsensitiveWholeNote(t *testing.T) {
	s := testStore(t)

	if _, err := s.Write("prefs", "Favorite Color is Blue", ModeAppend); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if _, err := s.Write("prefs", "also likes cats", ModeAppend); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if _, err := s.Write("recipes", "chicken soup", ModeAppend); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	results, err := s.Search("color")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() = %d results, want 1", len(results))
	}
	if results[0].Category != "prefs" {
		t.Errorf("matched category = %q, want prefs", results[0].Category)
	}
	// The entire note comes back, not just the matching block.
	if !strings.Contains(results[0].Note, "also likes cats") {
		t.Errorf("Search() returned partial note: %q", results[0].Note)
	}
}

func TestSearchNoMatch(t *testing.T) {
	s := testStore(t)

	if _, err := s.Write("prefs", "likes cats", ModeAppend); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	results, err := s.Search("quantum chromodynamics")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() = %v, want no results", results)
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"prefs", "prefs"},
		{"prefs.md", "prefs"},
		{"user preferences", "user_preferences"},
		{"../../etc/passwd", "etc_passwd"},
		{"a/b\\c", "a_b_c"},
		{"", "untitled"},
		{"...", "untitled"},
		{"Notes-2026_08", "Notes-2026_08"},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteSanitizesCategory(t *testing.T) {
	s := testStore(t)

	rec, err := s.Write("../secret notes", "body", ModeAppend)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if strings.ContainsAny(rec.Category, "/\\.") {
		t.Errorf("resolved category %q contains path characters", rec.Category)
	}
	// Read resolves the same way, so the raw name round-trips.
	if _, err := s.Read("../secret notes"); err != nil {
		t.Errorf("Read() with raw category error: %v", err)
	}
}

func TestUnknownMode(t *testing.T) {
	s := testStore(t)

	if _, err := s.Write("cat", "body", Mode("replace")); err == nil {
		t.Error("Write() with unknown mode succeeded, want error")
	}
}
