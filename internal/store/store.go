// Package store persists conversation messages in SQLite. Every message a
// user dispatches and every completed agent reply is recorded per agent,
// so a reopened conversation can show its history.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"roster/internal/log"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	// RoleSystem records lifecycle notices (run started, run failed).
	RoleSystem Role = "system"
)

// Message is one stored conversation entry.
type Message struct {
	ID      string
	AgentID string
	Role    Role
	Content string
	// JSONContent optionally keeps the raw stream event the content was
	// extracted from.
	JSONContent string
	CreatedAt   time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	json_content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_agent ON messages(agent_id, created_at);
`

// Store wraps the message database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the message database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping message store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply message schema: %w", err)
	}
	log.Info(log.CatStore, "message store opened", "path", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMessage persists one message, assigning an id and timestamp when
// absent, and returns the stored record.
func (s *Store) SaveMessage(m Message) (Message, error) {
	if m.AgentID == "" {
		return Message{}, fmt.Errorf("store: save: empty agent id")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO messages (id, agent_id, role, content, json_content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.AgentID, string(m.Role), m.Content, m.JSONContent, m.CreatedAt,
	)
	if err != nil {
		return Message{}, fmt.Errorf("failed to save message: %w", err)
	}
	return m, nil
}

// MessagesForAgent returns an agent's messages oldest-first, capped at limit
// most recent entries. A limit of 0 or less means no cap.
func (s *Store) MessagesForAgent(agentID string, limit int) ([]Message, error) {
	query := `SELECT id, agent_id, role, content, json_content, created_at
		FROM messages WHERE agent_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{agentID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages for %s: %w", agentID, err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// RecentMessages returns the newest messages across all agents,
// newest-first.
func (s *Store) RecentMessages(limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, agent_id, role, content, json_content, created_at
		 FROM messages ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// DeleteForAgent removes an agent's history. Returns the number of
// messages deleted.
func (s *Store) DeleteForAgent(agentID string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM messages WHERE agent_id = ?`, agentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages for %s: %w", agentID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var msgs []Message
	for rows.Next() {
		var m Message
		var role string
		if err := rows.Scan(&m.ID, &m.AgentID, &role, &m.Content,
			&m.JSONContent, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = Role(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgs, nil
}

func reverse(msgs []Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
