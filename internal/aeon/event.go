// Package aeon implements the event bridge between the sketchbook UI and the
// backend session it talks to. State lives on the backend; the UI reads it
// through path-addressed events and writes it by emitting user actions on the
// same paths. The bridge owns the single transport subscription, routes each
// inbound event to the one listener registered for its path, and wraps both
// directions in the Observable types that UI code actually consumes.
package aeon

import (
	"encoding/json"
	"strings"
)

// Event is one state update or one user edit: a segmented path addressing a
// slot in the backend state tree, plus an optional JSON-encoded payload.
// Several events bundled into one UserAction are applied by the backend as a
// single undo/redo unit.
type Event struct {
	Path    []string `json:"path"`
	Payload *string  `json:"payload"`
}

// NewEvent builds an event with a raw payload. Pass nil for payload-less
// events such as undo or refresh triggers.
func NewEvent(path []string, payload *string) Event {
	return Event{Path: path, Payload: payload}
}

// NewJSONEvent builds an event whose payload is the JSON encoding of value.
func NewJSONEvent(path []string, value any) (Event, error) {
	payload, err := MarshalPayload(value)
	if err != nil {
		return Event{}, err
	}
	return Event{Path: path, Payload: payload}, nil
}

// ByteSize is the approximate number of payload and path bytes held by the
// event. Used by the backend undo stack to bound its memory.
func (e Event) ByteSize() int {
	size := 0
	for _, segment := range e.Path {
		size += len(segment)
	}
	if e.Payload != nil {
		size += len(*e.Payload)
	}
	return size
}

// UserAction is a batch of events originating in one UI operation, tagged
// with the session it belongs to. The backend records the whole batch as one
// undo stack entry.
type UserAction struct {
	Session string  `json:"session"`
	Events  []Event `json:"events"`
}

// ByteSize sums the byte sizes of the underlying events.
func (a UserAction) ByteSize() int {
	size := 0
	for _, e := range a.Events {
		size += e.ByteSize()
	}
	return size
}

// RefreshRequest asks the backend to re-emit the current state under path.
type RefreshRequest struct {
	Session string   `json:"session"`
	Path    []string `json:"path"`
}

// MarshalPayload JSON-encodes value into the payload form carried by events.
func MarshalPayload(value any) (*string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	payload := string(raw)
	return &payload, nil
}

// UnmarshalPayload decodes an event payload. A nil payload decodes as the
// JSON literal null, matching how payload-less events are interpreted.
func UnmarshalPayload[T any](payload *string) (T, error) {
	raw := "null"
	if payload != nil {
		raw = *payload
	}
	var value T
	err := json.Unmarshal([]byte(raw), &value)
	return value, err
}

// PathString renders a path for log and error messages.
func PathString(path []string) string {
	return strings.Join(path, "/")
}
