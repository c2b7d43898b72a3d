package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dmarkhas/roomcast/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'offline',
	unread_counts TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS messages (
	id       TEXT PRIMARY KEY,
	content  TEXT NOT NULL,
	sender   TEXT NOT NULL,
	room     TEXT NOT NULL,
	sent_at  TEXT NOT NULL,
	sent_on  TEXT NOT NULL,
	seq      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_room_date ON messages (room, sent_on);
`

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function
// after the schema is applied. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// ListUsers returns the full roster.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]store.User, error) {
	query := `
		SELECT id, name, status, unread_counts
		FROM users
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w: %w", store.ErrPersistence, err)
	}
	defer rows.Close()

	var users []store.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w: %w", store.ErrPersistence, err)
	}

	return users, nil
}

// GetUser retrieves a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, name, status, unread_counts
		FROM users
		WHERE id = ?
	`
	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", id, store.ErrUserNotFound)
		}
		return nil, err
	}
	return u, nil
}

// SaveUser persists the user's status and unread counter snapshot.
func (s *SQLiteStore) SaveUser(ctx context.Context, u *store.User) error {
	counts, err := json.Marshal(u.UnreadCounts)
	if err != nil {
		return fmt.Errorf("marshal unread counts: %w", err)
	}

	query := `
		UPDATE users
		SET name = ?, status = ?, unread_counts = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, u.Name, string(u.Status), string(counts), u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w: %w", store.ErrPersistence, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w: %w", store.ErrPersistence, err)
	}
	if affected == 0 {
		return fmt.Errorf("user %q: %w", u.ID, store.ErrUserNotFound)
	}

	return nil
}

// ==== MessageStore implementation ====

// AppendMessage persists msg, assigning its id.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	// seq preserves insertion order; TEXT primary keys carry no
	// ordering of their own.
	query := `
		INSERT INTO messages (id, content, sender, room, sent_at, sent_on, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages))
	`
	if _, err := s.db.ExecContext(ctx, query, msg.ID, msg.Content, msg.From, msg.To, msg.Time, msg.Date); err != nil {
		return fmt.Errorf("insert message: %w: %w", store.ErrPersistence, err)
	}

	return nil
}

// ListRoomMessages returns every message addressed to room, in insertion order.
func (s *SQLiteStore) ListRoomMessages(ctx context.Context, room string) ([]store.Message, error) {
	query := `
		SELECT id, content, sender, room, sent_at, sent_on
		FROM messages
		WHERE room = ?
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, room)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w: %w", store.ErrPersistence, err)
	}
	defer rows.Close()

	var messages []store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.From, &m.To, &m.Time, &m.Date); err != nil {
			return nil, fmt.Errorf("scan message: %w: %w", store.ErrPersistence, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w: %w", store.ErrPersistence, err)
	}

	return messages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*store.User, error) {
	var (
		u      store.User
		status string
		counts string
	)
	if err := row.Scan(&u.ID, &u.Name, &status, &counts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w: %w", store.ErrPersistence, err)
	}

	u.Status = store.UserStatus(status)
	if err := json.Unmarshal([]byte(counts), &u.UnreadCounts); err != nil {
		return nil, fmt.Errorf("unmarshal unread counts: %w", err)
	}
	if u.UnreadCounts == nil {
		u.UnreadCounts = map[string]int{}
	}

	return &u, nil
}
