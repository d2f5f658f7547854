// Package session implements the backend side of the event bridge: session
// objects that consume user actions event by event, mutate the in-memory
// sketch, maintain the undo/redo stack, and answer refresh requests with the
// current state.
package session

import (
	"fmt"
	"log"

	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

// SketchStore persists whole-sketch snapshots for the export_sketch and
// import_sketch actions.
type SketchStore interface {
	Load(name string) (sketch.SketchData, error)
	Save(name string, data sketch.SketchData) error
}

// Session is the state of one connected frontend: its sketch, its tab bar,
// and its undo stack. A session is confined to the goroutine of the
// connection that owns it; the Manager serializes access.
type Session struct {
	id    string
	undo  *UndoStack
	store SketchStore

	tabActive int
	tabPinned []int
	state     *sketchState
}

// New creates a session with an empty sketch. store may be nil, in which
// case export and import actions fail.
func New(id string, store SketchStore) *Session {
	return &Session{
		id:    id,
		undo:  NewUndoStack(defaultEventLimit, defaultPayloadLimit),
		store: store,
		state: newSketchState(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// applied is the outcome of consuming one event.
type applied struct {
	// changes are emitted back to the frontend.
	changes []aeon.Event
	// reverse undoes the event; empty for irreversible events.
	reverse []aeon.Event
	// reversible events are recorded on the undo stack.
	reversible bool
	// clearStack marks events that invalidate recorded history entirely.
	clearStack bool
}

// Perform consumes one user action. All events of the action are applied in
// order and recorded as a single undo stack entry; the returned state
// changes are emitted to the frontend as one batch. An error aborts the
// action at the failing event; nothing is emitted or recorded for it.
func (s *Session) Perform(events []aeon.Event) ([]aeon.Event, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("empty action")
	}
	if len(events[0].Path) > 0 && events[0].Path[0] == "undo_stack" {
		if len(events) > 1 {
			return nil, fmt.Errorf("undo_stack events cannot be part of a compound action")
		}
		return s.performUndoRedo(events[0])
	}

	var changes []aeon.Event
	var reverse []aeon.Event
	reversible := true
	clearStack := false
	for _, event := range events {
		result, err := s.apply(event)
		if err != nil {
			return nil, err
		}
		changes = append(changes, result.changes...)
		// Reversal events run in the opposite order of the originals.
		reverse = append(result.reverse, reverse...)
		reversible = reversible && result.reversible
		clearStack = clearStack || result.clearStack
	}

	if clearStack {
		s.undo.Clear()
	} else if reversible && len(reverse) > 0 {
		s.undo.Push(append([]aeon.Event(nil), events...), reverse)
	}
	return append(changes, s.undoStatusEvents()...), nil
}

// performUndoRedo replays the recorded reversal (or the original action for
// redo) without touching the stack contents again.
func (s *Session) performUndoRedo(event aeon.Event) ([]aeon.Event, error) {
	if len(event.Path) != 2 {
		return nil, fmt.Errorf("invalid undo_stack path %s", aeon.PathString(event.Path))
	}
	var replay []aeon.Event
	var ok bool
	switch event.Path[1] {
	case "undo":
		replay, ok = s.undo.Undo()
		if !ok {
			return nil, fmt.Errorf("nothing to undo")
		}
	case "redo":
		replay, ok = s.undo.Redo()
		if !ok {
			return nil, fmt.Errorf("nothing to redo")
		}
	default:
		return nil, fmt.Errorf("invalid undo_stack path %s", aeon.PathString(event.Path))
	}

	var changes []aeon.Event
	for _, ev := range replay {
		result, err := s.apply(ev)
		if err != nil {
			return nil, fmt.Errorf("replaying %s: %w", aeon.PathString(ev.Path), err)
		}
		changes = append(changes, result.changes...)
	}
	return append(changes, s.undoStatusEvents()...), nil
}

// Refresh re-emits the current state under path as events addressed to that
// same path.
func (s *Session) Refresh(path []string) ([]aeon.Event, error) {
	value, err := s.refreshValue(path)
	if err != nil {
		return nil, err
	}
	event, err := aeon.NewJSONEvent(path, value)
	if err != nil {
		return nil, err
	}
	return []aeon.Event{event}, nil
}

func (s *Session) refreshValue(path []string) (any, error) {
	switch aeon.PathString(path) {
	case "undo_stack/can_undo":
		return s.undo.CanUndo(), nil
	case "undo_stack/can_redo":
		return s.undo.CanRedo(), nil
	case "tab_bar/active":
		return s.tabActive, nil
	case "tab_bar/pinned":
		return s.tabPinned, nil
	case "sketch/get_whole_sketch":
		return s.state.snapshot(), nil
	case "sketch/get_annotation", "sketch/set_annotation":
		return s.state.annotation, nil
	case "sketch/model/get_variables":
		return s.state.snapshot().Model.Variables, nil
	case "sketch/model/get_regulations":
		return s.state.snapshot().Model.Regulations, nil
	case "sketch/model/get_uninterpreted_fns":
		return s.state.snapshot().Model.UninterpretedFns, nil
	case "sketch/model/get_layouts":
		return s.state.snapshot().Model.Layouts, nil
	case "sketch/model/get_layout_nodes":
		return s.state.snapshot().Model.LayoutNodes, nil
	case "sketch/observations/get_datasets":
		return s.state.snapshot().Datasets, nil
	case "sketch/properties/get_dynamic":
		return s.state.snapshot().DynProperties, nil
	case "sketch/properties/get_static":
		return s.state.snapshot().StatProperties, nil
	}
	return nil, fmt.Errorf("invalid refresh path %s", aeon.PathString(path))
}

func (s *Session) undoStatusEvents() []aeon.Event {
	canUndo, _ := aeon.NewJSONEvent([]string{"undo_stack", "can_undo"}, s.undo.CanUndo())
	canRedo, _ := aeon.NewJSONEvent([]string{"undo_stack", "can_redo"}, s.undo.CanRedo())
	return []aeon.Event{canUndo, canRedo}
}

// apply routes one event by its path segments, mirroring the state tree:
// tab_bar and sketch at the top, model/observations/properties below sketch.
func (s *Session) apply(event aeon.Event) (applied, error) {
	path := event.Path
	if len(path) == 0 {
		return applied{}, fmt.Errorf("empty event path")
	}
	switch path[0] {
	case "tab_bar":
		return s.applyTabBar(event, path[1:])
	case "sketch":
		return s.applySketch(event, path[1:])
	}
	return applied{}, invalidPath(path)
}

func (s *Session) applyTabBar(event aeon.Event, rest []string) (applied, error) {
	if len(rest) != 1 {
		return applied{}, invalidPath(event.Path)
	}
	switch rest[0] {
	case "active":
		value, err := aeon.UnmarshalPayload[int](event.Payload)
		if err != nil {
			return applied{}, err
		}
		s.tabActive = value
		return echo(event.Path, value)
	case "pinned":
		value, err := aeon.UnmarshalPayload[[]int](event.Payload)
		if err != nil {
			return applied{}, err
		}
		s.tabPinned = value
		return echo(event.Path, value)
	}
	return applied{}, invalidPath(event.Path)
}

func (s *Session) applySketch(event aeon.Event, rest []string) (applied, error) {
	if len(rest) == 0 {
		return applied{}, invalidPath(event.Path)
	}
	switch rest[0] {
	case "model":
		return s.applyModel(event, rest[1:])
	case "observations":
		return s.applyObservations(event, rest[1:])
	case "properties":
		return s.applyProperties(event, rest[1:])
	case "set_annotation":
		value, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		old := s.state.annotation
		s.state.annotation = value
		return reversible(
			changeEvent(event.Path, value),
			jsonAction([]string{"sketch", "set_annotation"}, old),
		), nil
	case "new_sketch":
		s.state = newSketchState()
		return reset(changeEvent([]string{"sketch", "set_all"}, s.state.snapshot())), nil
	case "export_sketch":
		name, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if s.store == nil {
			return applied{}, fmt.Errorf("no sketch store configured")
		}
		if err := s.store.Save(name, s.state.snapshot()); err != nil {
			return applied{}, fmt.Errorf("exporting sketch %q: %w", name, err)
		}
		return applied{changes: changeEvent([]string{"sketch", "export_sketch"}, name)}, nil
	case "import_sketch":
		name, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if s.store == nil {
			return applied{}, fmt.Errorf("no sketch store configured")
		}
		data, err := s.store.Load(name)
		if err != nil {
			return applied{}, fmt.Errorf("importing sketch %q: %w", name, err)
		}
		s.state.restore(data)
		return reset(changeEvent([]string{"sketch", "set_all"}, s.state.snapshot())), nil
	}
	return applied{}, invalidPath(event.Path)
}

func invalidPath(path []string) error {
	return fmt.Errorf("invalid event path %s", aeon.PathString(path))
}

// changeEvent builds the single state-change event for a class-level path.
// The payload values used here are plain data structs; encoding them cannot
// fail, so a failure is logged and yields an empty change.
func changeEvent(path []string, value any) []aeon.Event {
	event, err := aeon.NewJSONEvent(path, value)
	if err != nil {
		log.Printf("session: cannot encode state change at %s: %v", aeon.PathString(path), err)
		return nil
	}
	return []aeon.Event{event}
}

// jsonAction builds a single reversal event with a JSON payload.
func jsonAction(path []string, value any) []aeon.Event {
	return changeEvent(path, value)
}

// rawAction builds a single reversal event without a payload.
func rawAction(path []string) []aeon.Event {
	return []aeon.Event{{Path: path}}
}

// echo re-emits the event on its own path as an irreversible change that
// keeps the undo stack intact (tab bar updates).
func echo(path []string, value any) (applied, error) {
	return applied{changes: changeEvent(path, value)}, nil
}

func reversible(changes, reverse []aeon.Event) applied {
	return applied{changes: changes, reverse: reverse, reversible: true}
}

func reset(changes []aeon.Event) applied {
	return applied{changes: changes, clearStack: true}
}
