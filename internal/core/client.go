package core

// Client is one live connection as seen by the hub.
type Client struct {
	SessionID string
	Commands  chan *Command
	Events    chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(sessionID string) *Client {
	return &Client{
		SessionID: sessionID,
		Commands:  make(chan *Command, 8),
		Events:    make(chan *Event, 16),
	}
}
