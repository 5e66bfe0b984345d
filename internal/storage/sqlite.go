// Package storage provides SQLite-based persistence for conversation records.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/randomchat/internal/chat"
)

// Store manages the SQLite database connection for chat history persistence.
type Store struct {
	db *sql.DB
}

// ConversationEntry represents a single finished conversation record.
// Only operational metadata is stored; message content is never persisted.
type ConversationEntry struct {
	ID           int64
	Room         string
	NicknameA    string
	NicknameB    string
	EndReason    string // "stopped", "disconnected", "rerolled"
	DurationSecs int
	StartedAt    time.Time
	CreatedAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room TEXT NOT NULL,
			nickname_a TEXT NOT NULL,
			nickname_b TEXT NOT NULL,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_conversations_room ON conversations(room);
		CREATE INDEX IF NOT EXISTS idx_conversations_recent ON conversations(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConversationEntry records a finished conversation.
// Returns the ID of the inserted record.
func (s *Store) SaveConversationEntry(entry ConversationEntry) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO conversations
		 (room, nickname_a, nickname_b, end_reason, duration_secs, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Room,
		entry.NicknameA,
		entry.NicknameB,
		entry.EndReason,
		entry.DurationSecs,
		entry.StartedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save conversation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SaveConversation implements chat.ConversationSaver.
// This adapter allows conversations to save their records without a direct
// storage dependency.
func (s *Store) SaveConversation(rec chat.ConversationRecord) error {
	entry := ConversationEntry{
		Room:         rec.Room,
		NicknameA:    rec.NicknameA,
		NicknameB:    rec.NicknameB,
		EndReason:    rec.EndReason,
		DurationSecs: int(rec.Duration.Round(time.Second) / time.Second),
		StartedAt:    rec.StartedAt,
	}
	_, err := s.SaveConversationEntry(entry)
	return err
}

// Ensure Store implements ConversationSaver
var _ chat.ConversationSaver = (*Store)(nil)

// RecentConversations retrieves the most recent conversation records.
func (s *Store) RecentConversations(limit int) ([]ConversationEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, room, nickname_a, nickname_b, end_reason, duration_secs, started_at, created_at
		 FROM conversations
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query conversations: %w", err)
	}
	defer rows.Close()

	var entries []ConversationEntry
	for rows.Next() {
		var e ConversationEntry
		var startedAt, createdAt any

		if err := rows.Scan(&e.ID, &e.Room, &e.NicknameA, &e.NicknameB, &e.EndReason, &e.DurationSecs, &startedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		e.StartedAt = parseDBTime(startedAt)
		e.CreatedAt = parseDBTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// RoomConversations retrieves the most recent conversations for one room.
func (s *Store) RoomConversations(room string, limit int) ([]ConversationEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, room, nickname_a, nickname_b, end_reason, duration_secs, started_at, created_at
		 FROM conversations
		 WHERE room = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		room, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query room conversations: %w", err)
	}
	defer rows.Close()

	var entries []ConversationEntry
	for rows.Next() {
		var e ConversationEntry
		var startedAt, createdAt any

		if err := rows.Scan(&e.ID, &e.Room, &e.NicknameA, &e.NicknameB, &e.EndReason, &e.DurationSecs, &startedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		e.StartedAt = parseDBTime(startedAt)
		e.CreatedAt = parseDBTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// RoomStats contains aggregated statistics for a room.
type RoomStats struct {
	Room            string
	Conversations   int
	AvgDurationSecs float64
	LastChat        time.Time
}

// RoomTotals retrieves per-room aggregates over all stored conversations.
func (s *Store) RoomTotals() ([]RoomStats, error) {
	rows, err := s.db.Query(
		`SELECT room, COUNT(*), COALESCE(AVG(duration_secs), 0), MAX(created_at)
		 FROM conversations
		 GROUP BY room
		 ORDER BY room`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get room totals: %w", err)
	}
	defer rows.Close()

	var totals []RoomStats
	for rows.Next() {
		var st RoomStats
		var lastChat any
		if err := rows.Scan(&st.Room, &st.Conversations, &st.AvgDurationSecs, &lastChat); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastChat = parseDBTime(lastChat)
		totals = append(totals, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return totals, nil
}

// parseDBTime converts a scanned DATETIME value - handles both time.Time and string.
func parseDBTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
