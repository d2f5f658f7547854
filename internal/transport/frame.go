// Package transport carries aeon events between a frontend bridge and a
// backend session manager. The wire format is a single websocket connection
// exchanging JSON frames; a loopback implementation runs both sides in one
// process for tests and for the embedded UI shell.
package transport

import "sketchbook/internal/aeon"

// Frame kinds. A connection starts with one hello/session handshake pair;
// afterwards the client sends action and refresh frames and the server sends
// state and error frames.
const (
	KindHello   = "hello"
	KindSession = "session"
	KindAction  = "action"
	KindRefresh = "refresh"
	KindState   = "state"
	KindError   = "error"
)

// Frame is the envelope for every message on the connection. Only the
// fields relevant to a frame's kind are populated.
type Frame struct {
	Kind    string       `json:"kind"`
	Session string       `json:"session,omitempty"`
	Events  []aeon.Event `json:"events,omitempty"`
	Path    []string     `json:"path,omitempty"`
	Message string       `json:"message,omitempty"`
}

// ErrorPath is the path on which backend-reported failures are delivered to
// the frontend, as a state event carrying the message as its payload.
var ErrorPath = []string{"error"}

// ErrorEvent wraps a backend failure message into a state event.
func ErrorEvent(message string) aeon.Event {
	payload, err := aeon.MarshalPayload(message)
	if err != nil {
		return aeon.Event{Path: ErrorPath}
	}
	return aeon.Event{Path: ErrorPath, Payload: payload}
}
