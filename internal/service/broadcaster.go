package service

// Broadcaster pushes live events to observers of a session. The WebSocket
// hub implements this; services treat it as optional.
type Broadcaster interface {
	BroadcastToSession(sessionID, msgType string, payload interface{})
}
