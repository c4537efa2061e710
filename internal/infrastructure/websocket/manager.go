package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/teikkkkk/store-chat/pkg/logger"
)

// Client is one relay connection viewing a single room.
type Client struct {
	UserID string
	RoomID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager tracks the relay connections per room.
type Manager struct {
	rooms      map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		rooms:      make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.rooms[client.RoomID] == nil {
					m.rooms[client.RoomID] = make(map[*Client]bool)
				}
				m.rooms[client.RoomID][client] = true
				m.mutex.Unlock()
				logger.Info("Relay client registered: user=%s room=%s", client.UserID, client.RoomID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if clients, ok := m.rooms[client.RoomID]; ok {
					if _, ok := clients[client]; ok {
						delete(clients, client)
						close(client.Send)
						if len(clients) == 0 {
							delete(m.rooms, client.RoomID)
						}
					}
				}
				m.mutex.Unlock()
				logger.Info("Relay client unregistered: user=%s room=%s", client.UserID, client.RoomID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// RoomClientCount reports how many relay connections view a room.
func (m *Manager) RoomClientCount(roomID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms[roomID])
}

// ReadPump reads inbound frames from the connection and hands them to
// onMessage until the peer goes away. onClose runs before the client is
// unregistered so callers can tear down their room subscription first.
func (c *Client) ReadPump(m *Manager, onMessage func(payload []byte), onClose func()) {
	defer func() {
		if onClose != nil {
			onClose()
		}
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Relay read error for user %s: %v", c.UserID, err)
			}
			break
		}
		onMessage(payload)
	}
}

// WritePump drains the Send channel onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("Relay write error for user %s: %v", c.UserID, err)
			return
		}
	}
}
