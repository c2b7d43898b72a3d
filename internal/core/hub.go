package core

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dmarkhas/roomcast/internal/store"
)

// Hub owns room membership and event fan-out. Each connection gets a
// session goroutine that feeds its commands here in arrival order; the
// membership index is written only by the owning session but read from
// any other session's send path, hence the lock.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	sessions map[string]*Client
	rooms    map[string]*Room
	current  map[*Client]string

	roomNames []string
	store     store.Store
	order     DateComparator
	log       *zerolog.Logger
}

// NewHub creates a hub for the configured set of room names. Rooms exist
// for the whole process lifetime; joins and sends to names outside the
// set are rejected.
func NewHub(st store.Store, roomNames []string, order DateComparator, logger *zerolog.Logger) *Hub {
	if order == nil {
		order = LegacyDateOrder
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	h := &Hub{
		clients:   make(map[*Client]struct{}),
		sessions:  make(map[string]*Client),
		rooms:     make(map[string]*Room, len(roomNames)),
		current:   make(map[*Client]string),
		roomNames: roomNames,
		store:     st,
		order:     order,
		log:       logger,
	}
	for _, name := range roomNames {
		h.rooms[name] = NewRoom(name)
	}
	return h
}

// RoomNames returns the configured room names in configuration order.
func (h *Hub) RoomNames() []string {
	return h.roomNames
}

// Register adds a client and starts its session loop. The loop ends when
// the client's command channel is closed or ctx is cancelled.
func (h *Hub) Register(ctx context.Context, c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.sessions[c.SessionID] = c
	h.mu.Unlock()

	go h.serveClient(ctx, c)
}

// Unregister clears the client's membership and removes it. This is the
// transport-disconnect path; it never touches presence status.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.current[c]; ok {
		if r, exists := h.rooms[room]; exists {
			r.RemoveClient(c)
		}
		delete(h.current, c)
	}
	delete(h.clients, c)
	delete(h.sessions, c.SessionID)
}

// Join unsubscribes c from previous (a safe no-op if absent) and
// subscribes it to room. A client is a member of at most one room.
func (h *Hub) Join(c *Client, room, previous string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, ok := h.rooms[room]
	if !ok {
		return ErrUnknownRoom
	}

	if prev, exists := h.rooms[previous]; exists {
		prev.RemoveClient(c)
	}
	next.AddClient(c)
	h.current[c] = room
	return nil
}

// CurrentRoom reports the room c is a member of, if any.
func (h *Hub) CurrentRoom(c *Client) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.current[c]
	return room, ok
}

// ToClient delivers an event to a single client, best effort.
func (h *Hub) ToClient(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		h.log.Debug().Str("session_id", c.SessionID).Msg("dropped event for slow client")
	}
}

// ToRoom delivers an event to every member of room, and only those.
func (h *Hub) ToRoom(room string, event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[room]; ok {
		r.Broadcast(event)
	}
}

// ToAll delivers an event to every live client.
func (h *Hub) ToAll(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		h.ToClient(c, event)
	}
}

// ToAllExcept delivers an event to every live client other than skip.
func (h *Hub) ToAllExcept(skip *Client, event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c == skip {
			continue
		}
		h.ToClient(c, event)
	}
}

// ToAllExceptSession delivers an event to every live client whose session
// id differs from sessionID. An empty or unknown id reaches everyone.
func (h *Hub) ToAllExceptSession(sessionID string, event *Event) {
	h.mu.RLock()
	skip := h.sessions[sessionID]
	h.mu.RUnlock()
	h.ToAllExcept(skip, event)
}

func (h *Hub) serveClient(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			h.Dispatch(ctx, c, cmd)
		case <-ctx.Done():
			return
		}
	}
}

// Dispatch executes one command on behalf of c. Failures surface as
// error events on the originating connection; they never stop the hub.
func (h *Hub) Dispatch(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandAnnounce:
		h.announce(ctx, c)
	case CommandJoinRoom:
		h.joinRoom(ctx, c, cmd)
	case CommandSendMessage:
		h.sendMessage(ctx, c, cmd)
	default:
		h.ToClient(c, errorEvent(coreError(ErrCodeBadRequest, "unknown command")))
	}
}

func (h *Hub) announce(ctx context.Context, c *Client) {
	users, err := h.store.ListUsers(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("list roster")
		h.ToClient(c, errorEvent(errToCore(err)))
		return
	}
	h.ToAll(&Event{Kind: EventRoster, Users: users})
}

func (h *Hub) joinRoom(ctx context.Context, c *Client, cmd *Command) {
	if err := h.Join(c, cmd.Room, cmd.PreviousRoom); err != nil {
		h.ToClient(c, errorEvent(errToCore(err)))
		return
	}

	groups, err := h.historyFor(ctx, cmd.Room)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("load room history")
		h.ToClient(c, errorEvent(errToCore(err)))
		return
	}
	h.ToClient(c, &Event{Kind: EventRoomHistory, Room: cmd.Room, Groups: groups})
}

func (h *Hub) sendMessage(ctx context.Context, c *Client, cmd *Command) {
	// The rooms map is fixed after construction; key lookup needs no lock.
	if _, ok := h.rooms[cmd.Room]; !ok {
		h.ToClient(c, errorEvent(errToCore(ErrUnknownRoom)))
		return
	}

	msg := cmd.Message
	msg.To = cmd.Room
	if err := h.store.AppendMessage(ctx, &msg); err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("append message")
		h.ToClient(c, errorEvent(errToCore(err)))
		return
	}

	groups, err := h.historyFor(ctx, cmd.Room)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("load room history")
		h.ToClient(c, errorEvent(errToCore(err)))
		return
	}

	h.ToRoom(cmd.Room, &Event{Kind: EventRoomHistory, Room: cmd.Room, Groups: groups})
	h.ToAllExcept(c, &Event{Kind: EventNotification, Room: cmd.Room})
}

func (h *Hub) historyFor(ctx context.Context, room string) ([]DateGroup, error) {
	msgs, err := h.store.ListRoomMessages(ctx, room)
	if err != nil {
		return nil, err
	}
	return AggregateHistory(msgs, h.order), nil
}

func errorEvent(ce *CoreError) *Event {
	return &Event{Kind: EventError, Error: ce}
}

func errToCore(err error) *CoreError {
	switch {
	case errors.Is(err, ErrUnknownRoom):
		return coreError(ErrCodeUnknownRoom, "room is not in the configured set")
	case errors.Is(err, store.ErrUserNotFound):
		return coreError(ErrCodeUserNotFound, "user not found")
	case errors.Is(err, store.ErrPersistence):
		return coreError(ErrCodePersistence, "storage unavailable")
	default:
		return coreError(ErrCodeInternal, "internal error")
	}
}
