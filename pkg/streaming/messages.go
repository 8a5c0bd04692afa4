// Package streaming defines the JSON envelopes a live spectator server
// receives over WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/ringside/simulator/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartMatch   = "start_match"
	TypeEndMatch     = "end_match"
	TypeFighterState = "fighter_state"
	TypeHit          = "hit"
	TypeRound        = "round"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartMatchPayload carries the match header and both fighters.
type StartMatchPayload struct {
	Match    *core.Match     `json:"match"`
	Fighters [2]core.Fighter `json:"fighters"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
