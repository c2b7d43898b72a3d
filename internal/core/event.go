package core

import "github.com/dmarkhas/roomcast/internal/store"

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventRoster delivers the full user roster with presence status.
	EventRoster EventKind = iota
	// EventRoomHistory delivers a room's date-grouped message history.
	EventRoomHistory
	// EventNotification tells a client that some room it is not watching
	// received a message. Carries the room name only.
	EventNotification
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind   EventKind
	Room   string
	Users  []store.User // for EventRoster
	Groups []DateGroup  // for EventRoomHistory
	Error  *CoreError   // for EventError
}
