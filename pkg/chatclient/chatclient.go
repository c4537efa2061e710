// Package chatclient is the Go client for the store's support chat. It
// bridges a primary backend session into a realtime-store session (room
// lookup, credential exchange, sign-in) and exposes each room's message log
// as a live stream of chronologically ordered snapshots.
package chatclient

import (
	"errors"
	"time"
)

var (
	// ErrUnauthorized means the primary token was missing or rejected; the
	// caller should send the user back through login.
	ErrUnauthorized = errors.New("chatclient: primary token rejected")

	// ErrBridgeFailed means the credential exchange or realtime sign-in was
	// rejected. The room view should show an error state; no subscription is
	// attempted.
	ErrBridgeFailed = errors.New("chatclient: unable to connect to chat")

	// ErrEmptyMessage is returned by Send for content that is empty after
	// trimming. No write is performed.
	ErrEmptyMessage = errors.New("chatclient: message content is empty")
)

// Message mirrors one entry of a room's log: sender identifier (a user ID or
// the fixed admin marker), text content, and the sender-assigned timestamp
// that orders the room.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomUser identifies the customer owning a room on the admin roster.
type RoomUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Room is one roster entry.
type Room struct {
	ID        string    `json:"id"`
	User      RoomUser  `json:"user"`
	RoomID    string    `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}

// State tracks one room view's lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateSubscribing
	StateLive
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateSubscribing:
		return "subscribing"
	case StateLive:
		return "live"
	case StateError:
		return "error"
	}
	return "unknown"
}
