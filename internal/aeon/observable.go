package aeon

import (
	"fmt"
	"reflect"
)

// subscriber pairs a callback with the identity key used for deduplication
// and removal. Callbacks are identified by their code pointer.
type subscriber[T any] struct {
	key uintptr
	fn  func(T)
}

func callbackKey[T any](fn func(T)) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// multicaster holds the subscriber list shared by Observable and
// ObservableState: ordered, deduplicated, with per-subscriber panic
// isolation so one failing callback cannot starve its siblings.
type multicaster[T any] struct {
	path        []string
	reporter    ErrorReporter
	subscribers []subscriber[T]
}

func (m *multicaster[T]) add(fn func(T)) bool {
	key := callbackKey(fn)
	for _, sub := range m.subscribers {
		if sub.key == key {
			return false
		}
	}
	m.subscribers = append(m.subscribers, subscriber[T]{key: key, fn: fn})
	return true
}

func (m *multicaster[T]) remove(fn func(T)) bool {
	key := callbackKey(fn)
	for i, sub := range m.subscribers {
		if sub.key == key {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

// notify invokes every subscriber in registration order. It iterates over a
// snapshot so a callback may subscribe or unsubscribe reentrantly without
// affecting the current round.
func (m *multicaster[T]) notify(value T) {
	snapshot := make([]subscriber[T], len(m.subscribers))
	copy(snapshot, m.subscribers)
	for _, sub := range snapshot {
		m.invoke(sub.fn, value)
	}
}

func (m *multicaster[T]) invoke(fn func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			m.reporter.Report(errorDialogTitle, fmt.Sprintf(
				"Listener for %s panicked: %v", PathString(m.path), r))
		}
	}()
	fn(value)
}

// Observable is a stateless fan-out wrapper around one path: it registers a
// single bridge-level listener and broadcasts each decoded value to any
// number of callbacks. New subscribers receive nothing until the next event.
//
// Observables are created once per path when the typed state tree is built
// and live for the rest of the process; there is no unregistration.
type Observable[T any] struct {
	bridge *Bridge
	path   []string
	cast   multicaster[T]
}

// NewObservable creates the observable and registers it with the bridge.
func NewObservable[T any](bridge *Bridge, path []string) *Observable[T] {
	o := &Observable[T]{
		bridge: bridge,
		path:   path,
		cast:   multicaster[T]{path: path, reporter: bridge.Reporter()},
	}
	bridge.SetEventListener(path, o.consume)
	return o
}

// Path returns the path this observable is bound to.
func (o *Observable[T]) Path() []string {
	return o.path
}

// AddEventListener subscribes fn. Returns false if the same callback is
// already subscribed, in which case nothing changes.
func (o *Observable[T]) AddEventListener(fn func(T)) bool {
	return o.cast.add(fn)
}

// RemoveEventListener unsubscribes fn, reporting whether it was subscribed.
func (o *Observable[T]) RemoveEventListener(fn func(T)) bool {
	return o.cast.remove(fn)
}

// consume is the bridge-level listener: decode, then fan out. A payload that
// fails to decode is reported and dropped without notifying anyone.
func (o *Observable[T]) consume(payload *string) {
	value, err := UnmarshalPayload[T](payload)
	if err != nil {
		reportDecodeFailure(o.bridge.Reporter(), o.path, payload, err)
		return
	}
	o.cast.notify(value)
}

// ObservableState is an Observable that additionally retains the last
// decoded value, replays it synchronously to new subscribers, and exposes
// synchronous reads. It is the source of truth for UI state between events.
type ObservableState[T any] struct {
	bridge *Bridge
	path   []string
	cast   multicaster[T]
	last   T
}

// NewObservableState creates the observable state with initial as the value
// reported until the first event arrives, and registers it with the bridge.
func NewObservableState[T any](bridge *Bridge, path []string, initial T) *ObservableState[T] {
	s := &ObservableState[T]{
		bridge: bridge,
		path:   path,
		cast:   multicaster[T]{path: path, reporter: bridge.Reporter()},
		last:   initial,
	}
	bridge.SetEventListener(path, s.consume)
	return s
}

// Path returns the path this observable state is bound to.
func (s *ObservableState[T]) Path() []string {
	return s.path
}

// Value returns the most recently decoded value, or the initial value if no
// event has been received yet.
func (s *ObservableState[T]) Value() T {
	return s.last
}

// Refresh asks the backend to re-emit the current value for this path. The
// stored value only changes once the corresponding event arrives.
func (s *ObservableState[T]) Refresh() {
	s.bridge.Refresh(s.path)
}

// AddEventListener subscribes fn. When notifyNow is true and fn was newly
// subscribed, fn is invoked synchronously with the current value before
// AddEventListener returns, so freshly mounted UI sees state without waiting
// for a backend round trip. Returns false for an already subscribed callback.
func (s *ObservableState[T]) AddEventListener(fn func(T), notifyNow bool) bool {
	added := s.cast.add(fn)
	if added && notifyNow {
		s.cast.invoke(fn, s.last)
	}
	return added
}

// RemoveEventListener unsubscribes fn, reporting whether it was subscribed.
func (s *ObservableState[T]) RemoveEventListener(fn func(T)) bool {
	return s.cast.remove(fn)
}

// consume decodes the payload, stores it as the current value, and only then
// fans out, so a subscriber reading Value reentrantly sees the new value.
func (s *ObservableState[T]) consume(payload *string) {
	value, err := UnmarshalPayload[T](payload)
	if err != nil {
		reportDecodeFailure(s.bridge.Reporter(), s.path, payload, err)
		return
	}
	s.last = value
	s.cast.notify(value)
}

// MutableObservableState couples the read side of ObservableState with the
// ability to emit a "set" user action on the same path. Writes are
// fire-and-forget: the stored value is not updated until the backend echoes
// the change back as an event.
type MutableObservableState[T any] struct {
	*ObservableState[T]
}

// NewMutableObservableState creates the state wrapper and registers it.
func NewMutableObservableState[T any](bridge *Bridge, path []string, initial T) *MutableObservableState[T] {
	return &MutableObservableState[T]{NewObservableState(bridge, path, initial)}
}

// Set builds the event that writes value to this path, without sending it.
// Callers bundle the result into compound actions via Bridge.EmitAction.
func (s *MutableObservableState[T]) Set(value T) Event {
	payload, err := MarshalPayload(value)
	if err != nil {
		s.bridge.Reporter().Report(errorDialogTitle, fmt.Sprintf(
			"Cannot encode value for %s: %v", PathString(s.path), err))
		return Event{Path: s.path}
	}
	return Event{Path: s.path, Payload: payload}
}

// EmitValue sends the write as a standalone single-event action.
func (s *MutableObservableState[T]) EmitValue(value T) {
	s.bridge.EmitAction(s.Set(value))
}

func reportDecodeFailure(reporter ErrorReporter, path []string, payload *string, err error) {
	raw := "null"
	if payload != nil {
		raw = *payload
	}
	reporter.Report(errorDialogTitle, fmt.Sprintf(
		"Cannot decode event at %s: %v (payload %q)", PathString(path), err, raw))
}
