package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgProgressUpdate   MessageType = "progress_update"
	MsgMetricsUpdate    MessageType = "metrics_update"
	MsgSessionCompleted MessageType = "session_completed"
	MsgError            MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans session events out to dashboard observers. A session can have
// any number of observers; a respondent client does not need one.
type Hub struct {
	observers map[string]map[*Connection]bool // sessionID -> connections

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage
}

// Connection represents one observer WebSocket connection
type Connection struct {
	SessionID string
	Send      chan []byte
	Hub       *Hub
}

type broadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a hub and starts its event loop
func NewHub() *Hub {
	h := &Hub{
		observers:  make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *broadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.observers[conn.SessionID] == nil {
				h.observers[conn.SessionID] = make(map[*Connection]bool)
			}
			h.observers[conn.SessionID][conn] = true
			h.mu.Unlock()
			log.Debug().Str("session", conn.SessionID).Msg("observer connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.observers[conn.SessionID]; ok && conns[conn] {
				delete(conns, conn)
				close(conn.Send)
				if len(conns) == 0 {
					delete(h.observers, conn.SessionID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("session", conn.SessionID).Msg("observer disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.observers[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds an observer connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes an observer connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSession sends a message to all observers of a session
// (implements service.Broadcaster).
func (h *Hub) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &broadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
