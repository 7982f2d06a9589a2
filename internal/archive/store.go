// Package archive provides the durable session transcript store. Every
// message that passes through a session is recorded as-is, including
// tool call requests and results, so past conversations can be
// reviewed after the in-memory window has trimmed them away.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/microwavehq/microwave-agent/internal/llm"
)

// Session is one archived conversation.
type Session struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	MessageCount int        `json:"message_count"`
}

// Store is a SQLite-backed transcript archive.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		tool_calls TEXT,
		tool_call_id TEXT,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginSession creates a new session row and returns its ID.
func (s *Store) BeginSession() (string, error) {
	id := uuid.NewString()
	if _, err := s.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return id, nil
}

// EndSession stamps the session as finished. Ending an already ended
// session is harmless.
func (s *Store) EndSession(sessionID string) error {
	if _, err := s.db.Exec(
		`UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		time.Now().UTC(), sessionID,
	); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// AppendMessage records one message at the end of the session
// transcript. Tool calls are stored as JSON alongside the content.
func (s *Store) AppendMessage(sessionID string, msg llm.Message) error {
	var toolCalls any
	if len(msg.ToolCalls) > 0 {
		data, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("marshal tool calls: %w", err)
		}
		toolCalls = string(data)
	}

	var toolCallID any
	if msg.ToolCallID != "" {
		toolCallID = msg.ToolCallID
	}

	msgID, _ := uuid.NewV7()
	_, err := s.db.Exec(`
		INSERT INTO messages (id, session_id, seq, role, content, tool_calls, tool_call_id, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE session_id = ?), ?, ?, ?, ?, ?)
	`, msgID.String(), sessionID, sessionID, msg.Role, msg.Content, toolCalls, toolCallID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT s.id, s.started_at, s.ended_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
		FROM sessions s
		ORDER BY s.started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var ended sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &ended, &sess.MessageCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if ended.Valid {
			sess.EndedAt = &ended.Time
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SessionMessages returns the full transcript of a session in
// insertion order.
func (s *Store) SessionMessages(sessionID string) ([]llm.Message, error) {
	rows, err := s.db.Query(`
		SELECT role, content, tool_calls, tool_call_id
		FROM messages
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	defer rows.Close()

	var messages []llm.Message
	for rows.Next() {
		var msg llm.Message
		var toolCalls, toolCallID sql.NullString
		if err := rows.Scan(&msg.Role, &msg.Content, &toolCalls, &toolCallID); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if toolCalls.Valid {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("parse tool calls: %w", err)
			}
		}
		if toolCallID.Valid {
			msg.ToolCallID = toolCallID.String
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Stats returns archive counters.
func (s *Store) Stats() map[string]any {
	var sessionCount, messageCount int
	_ = s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&sessionCount)
	_ = s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&messageCount)

	return map[string]any{
		"sessions": sessionCount,
		"messages": messageCount,
		"storage":  "sqlite",
	}
}
