package transport

import (
	"fmt"
	"log"

	"sketchbook/internal/aeon"
)

// Backend is the part of the session manager the loopback needs: consume an
// action or a refresh and return the state changes to deliver.
type Backend interface {
	Perform(action aeon.UserAction) ([]aeon.Event, error)
	Refresh(refresh aeon.RefreshRequest) ([]aeon.Event, error)
}

// Loopback connects a bridge directly to an in-process backend. Sends are
// handled synchronously: by the time SendAction returns, the resulting state
// changes have already been delivered to the subscriber. Backend failures
// are delivered as error-path events, the same way the websocket server
// reports them.
type Loopback struct {
	backend Backend
	receive func(events []aeon.Event)
}

func NewLoopback(backend Backend) *Loopback {
	return &Loopback{backend: backend}
}

func (t *Loopback) Subscribe(receive func(events []aeon.Event)) {
	t.receive = receive
}

func (t *Loopback) SendAction(action aeon.UserAction) error {
	if t.receive == nil {
		return fmt.Errorf("loopback has no subscriber")
	}
	changes, err := t.backend.Perform(action)
	if err != nil {
		log.Printf("transport: action failed: %v", err)
		t.receive([]aeon.Event{ErrorEvent(err.Error())})
		return nil
	}
	t.receive(changes)
	return nil
}

func (t *Loopback) SendRefresh(refresh aeon.RefreshRequest) error {
	if t.receive == nil {
		return fmt.Errorf("loopback has no subscriber")
	}
	changes, err := t.backend.Refresh(refresh)
	if err != nil {
		log.Printf("transport: refresh failed: %v", err)
		t.receive([]aeon.Event{ErrorEvent(err.Error())})
		return nil
	}
	t.receive(changes)
	return nil
}
