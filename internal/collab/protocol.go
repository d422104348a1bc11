package collab

import (
	"encoding/json"

	"github.com/inamate/spider/internal/engine"
)

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type Role string

const (
	RoleViewer     Role = "viewer"
	RoleController Role = "controller"
)

type PresencePayload struct {
	Pointer     *PointerPos `json:"pointer,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
	Role        Role        `json:"role,omitempty"`
}

type PointerPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences   map[string]PresencePayload `json:"presences"`
	Controllers int                        `json:"controllers"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type WelcomePayload struct {
	ClientID string       `json:"clientId"`
	Role     Role         `json:"role"`
	State    engine.State `json:"state"`
}

// FramePayload carries one rendered frame as draw commands in painter's order.
type FramePayload struct {
	Version  uint64               `json:"version"`
	State    engine.State         `json:"state"`
	Commands []engine.DrawCommand `json:"commands"`
}

type IntentPayload struct {
	Intent engine.Intent `json:"intent"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Rig control
	TypeIntent = "intent"
	TypeFrame  = "frame"
)

func newMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
