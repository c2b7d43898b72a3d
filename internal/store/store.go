package store

import (
	"context"
	"errors"
)

// UserStatus is the coarse presence state of a user.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
)

// User represents an entry in the user directory.
type User struct {
	ID           string
	Name         string
	Status       UserStatus
	UnreadCounts map[string]int // room name -> unread messages at last logout
}

// Message is a persisted chat message. Immutable once appended.
type Message struct {
	ID      string
	Content string
	From    string
	To      string // destination room
	Time    string // free-form, as supplied by the sender
	Date    string // M/D/Y string, as supplied by the sender
}

var (
	// ErrUserNotFound is returned when a referenced user id is unknown.
	ErrUserNotFound = errors.New("user not found")
	// ErrPersistence wraps storage-layer read/write failures.
	ErrPersistence = errors.New("persistence failure")
)

// UserStore is the user directory seen by the presence tracker.
// Users are created elsewhere; this subsystem only reads them and
// updates status and unread counters.
type UserStore interface {
	// ListUsers returns the full roster.
	ListUsers(ctx context.Context) ([]User, error)

	// GetUser retrieves a user by id. Returns ErrUserNotFound if absent.
	GetUser(ctx context.Context, id string) (*User, error)

	// SaveUser persists the user's status and unread counter snapshot.
	SaveUser(ctx context.Context, u *User) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage persists msg, assigning its id. No update or delete
	// operations exist; messages live forever.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListRoomMessages returns every message addressed to room, in
	// storage order. Date grouping and ordering is the caller's concern.
	ListRoomMessages(ctx context.Context, room string) ([]Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
