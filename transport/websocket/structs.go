package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// Message is the envelope for everything exchanged over a socket. For
// snapshot:push the payload is the raw GameState blob itself, passed through
// to the peer untouched.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ResponsePayload struct {
	State *gomoku.GameState `json:"state,omitempty"`
	Error string            `json:"error,omitempty"`
}
