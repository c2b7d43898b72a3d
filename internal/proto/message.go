package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeNewUser     = "new-user"
	InboundTypeJoinRoom    = "join-room"
	InboundTypeMessageRoom = "message-room"

	OutboundTypeNewUser       = "new-user"
	OutboundTypeRoomMessages  = "room-messages"
	OutboundTypeNotifications = "notifications"
	OutboundTypeError         = "error"
)

// JoinRoomData requests moving from the previous room to a new one.
type JoinRoomData struct {
	Room         string `json:"room"`
	PreviousRoom string `json:"previous_room,omitempty"`
}

// MessageRoomData is a chat message from the client. Date is an M/D/Y
// string and Time is free-form; both are stored verbatim.
type MessageRoomData struct {
	Room    string `json:"room"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
	Time    string `json:"time"`
	Date    string `json:"date"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// UserInfo is one roster entry.
type UserInfo struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	UnreadCounts map[string]int `json:"unread_counts"`
}

// MessageInfo is one stored message as delivered inside a history group.
type MessageInfo struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	From    string `json:"from"`
	To      string `json:"to"`
	Time    string `json:"time"`
	Date    string `json:"date"`
}

// DateGroupInfo is one date bucket of a room's ordered history.
type DateGroupInfo struct {
	Date     string        `json:"date"`
	Messages []MessageInfo `json:"messages"`
}

// RoomMessagesData carries a room's full ordered history view.
type RoomMessagesData struct {
	Room   string          `json:"room"`
	Groups []DateGroupInfo `json:"groups"`
}

// NotificationData names a room that received a message elsewhere.
type NotificationData struct {
	Room string `json:"room"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
