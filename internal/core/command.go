package core

import "github.com/dmarkhas/roomcast/internal/store"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAnnounce asks for the roster to be re-broadcast to everyone.
	CommandAnnounce CommandKind = iota
	// CommandJoinRoom moves the client from its previous room to a new one.
	CommandJoinRoom
	// CommandSendMessage persists a message and refreshes the room's history.
	CommandSendMessage
)

// Command represents an action requested by a client. Commands from one
// connection are processed in the order they arrive.
type Command struct {
	Kind         CommandKind
	Room         string
	PreviousRoom string
	Message      store.Message
}
