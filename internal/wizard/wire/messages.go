// Package wire defines the WebSocket protocol for remote wizard sessions.
package wire

import (
	"encoding/json"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/wizard"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "open", "goto", "next", "previous", "set_basic", "set_spec", "clear_spec", "set_feature", "submit", "close", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// OpenData is the payload for "open" messages.
type OpenData struct {
	Mode      wizard.Mode `json:"mode"`
	VariantID string      `json:"variant_id,omitempty"`
}

// GotoData is the payload for "goto" messages. Scroll is the offset of the
// step being left.
type GotoData struct {
	Step   wizard.Step `json:"step"`
	Scroll int         `json:"scroll"`
}

// MoveData is the payload for "next" and "previous" messages.
type MoveData struct {
	Scroll int `json:"scroll"`
}

// SetBasicData is the payload for "set_basic" messages.
type SetBasicData struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// SetSpecData is the payload for "set_spec" and "clear_spec" messages.
type SetSpecData struct {
	Field string `json:"field"`
	Value any    `json:"value,omitempty"`
}

// SetFeatureData is the payload for "set_feature" messages.
type SetFeatureData struct {
	Category string `json:"category"`
	Flag     string `json:"flag"`
	Selected bool   `json:"selected"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "view", "submitted", "closed", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
	Actor     string `json:"actor,omitempty"`
	Resumed   bool   `json:"resumed"`
}

// ViewData carries a render of the current step. Scroll is set after
// navigation to the offset the client should restore.
type ViewData struct {
	Step   wizard.Step `json:"step"`
	Scroll *int        `json:"scroll,omitempty"`
	View   wizard.View `json:"view"`
}

// SubmittedData carries the stored record after a successful submit.
type SubmittedData struct {
	Record *types.VariantRecord `json:"record"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Fields  []payload.FieldError `json:"fields,omitempty"`
}
