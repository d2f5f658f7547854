package session

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

func jsonEvent(t *testing.T, path string, value any) aeon.Event {
	t.Helper()
	event, err := aeon.NewJSONEvent(strings.Split(path, "/"), value)
	if err != nil {
		t.Fatalf("encoding payload for %s: %v", path, err)
	}
	return event
}

func rawEvent(path string) aeon.Event {
	return aeon.Event{Path: strings.Split(path, "/")}
}

// findChange returns the payload of the single state change at path.
func findChange[T any](t *testing.T, changes []aeon.Event, path string) T {
	t.Helper()
	for _, event := range changes {
		if aeon.PathString(event.Path) == path {
			value, err := aeon.UnmarshalPayload[T](event.Payload)
			if err != nil {
				t.Fatalf("decoding change at %s: %v", path, err)
			}
			return value
		}
	}
	t.Fatalf("no state change at %s in %v", path, changePaths(changes))
	panic("unreachable")
}

func changePaths(changes []aeon.Event) []string {
	paths := make([]string, len(changes))
	for i, event := range changes {
		paths[i] = aeon.PathString(event.Path)
	}
	return paths
}

func addVariable(t *testing.T, s *Session, id string) {
	t.Helper()
	v := sketch.VariableData{ID: id, Name: id}
	if _, err := s.Perform([]aeon.Event{jsonEvent(t, "sketch/model/variable/add", v)}); err != nil {
		t.Fatalf("adding variable %s: %v", id, err)
	}
}

func TestSessionAddVariableEmitsChangeAndUndoStatus(t *testing.T) {
	s := New("s1", nil)
	v := sketch.VariableData{ID: "x", Name: "x", UpdateFn: "f(x)"}

	changes, err := s.Perform([]aeon.Event{jsonEvent(t, "sketch/model/variable/add", v)})
	if err != nil {
		t.Fatalf("perform: %v", err)
	}
	got := findChange[sketch.VariableData](t, changes, "sketch/model/variable/add")
	if diff := cmp.Diff(v, got); diff != "" {
		t.Fatalf("variable change mismatch (-want +got):\n%s", diff)
	}
	if !findChange[bool](t, changes, "undo_stack/can_undo") {
		t.Fatalf("can_undo not raised after reversible action")
	}
	if findChange[bool](t, changes, "undo_stack/can_redo") {
		t.Fatalf("can_redo raised without an undo")
	}
}

func TestSessionUndoRedoRoundTrip(t *testing.T) {
	s := New("s1", nil)
	addVariable(t, s, "x")

	changes, err := s.Perform([]aeon.Event{jsonEvent(t, "sketch/model/variable/x/set_name", "renamed")})
	if err != nil {
		t.Fatalf("set_name: %v", err)
	}
	updated := findChange[sketch.VariableData](t, changes, "sketch/model/variable/set_name")
	if updated.Name != "renamed" {
		t.Fatalf("name after set_name: got=%q", updated.Name)
	}

	changes, err = s.Perform([]aeon.Event{rawEvent("undo_stack/undo")})
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	reverted := findChange[sketch.VariableData](t, changes, "sketch/model/variable/set_name")
	if reverted.Name != "x" {
		t.Fatalf("name after undo: got=%q want=x", reverted.Name)
	}
	if !findChange[bool](t, changes, "undo_stack/can_redo") {
		t.Fatalf("can_redo not raised after undo")
	}

	changes, err = s.Perform([]aeon.Event{rawEvent("undo_stack/redo")})
	if err != nil {
		t.Fatalf("redo: %v", err)
	}
	redone := findChange[sketch.VariableData](t, changes, "sketch/model/variable/set_name")
	if redone.Name != "renamed" {
		t.Fatalf("name after redo: got=%q want=renamed", redone.Name)
	}
}

func TestSessionCompoundActionIsOneUndoStep(t *testing.T) {
	s := New("s1", nil)
	v := sketch.VariableData{ID: "x", Name: "x"}
	position := sketch.LayoutNodeData{Layout: DefaultLayoutID, Variable: "x", PX: 100, PY: 50}

	// One user action: create the variable and place its node.
	changes, err := s.Perform([]aeon.Event{
		jsonEvent(t, "sketch/model/variable/add", v),
		jsonEvent(t, "sketch/model/layout/default/update_position", position),
	})
	if err != nil {
		t.Fatalf("compound perform: %v", err)
	}
	moved := findChange[sketch.LayoutNodeData](t, changes, "sketch/model/layout/update_position")
	if moved.PX != 100 || moved.PY != 50 {
		t.Fatalf("node position: got=(%v,%v)", moved.PX, moved.PY)
	}

	// One undo reverts both edits: the variable is gone again.
	if _, err := s.Perform([]aeon.Event{rawEvent("undo_stack/undo")}); err != nil {
		t.Fatalf("undo: %v", err)
	}
	refreshed, err := s.Refresh([]string{"sketch", "model", "get_variables"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	variables, err := aeon.UnmarshalPayload[[]sketch.VariableData](refreshed[0].Payload)
	if err != nil {
		t.Fatalf("decoding variables: %v", err)
	}
	if len(variables) != 0 {
		t.Fatalf("variables after undoing compound action: %v", variables)
	}
}

func TestSessionRemoveVariableRestoresPositionsOnUndo(t *testing.T) {
	s := New("s1", nil)
	addVariable(t, s, "x")
	position := sketch.LayoutNodeData{Layout: DefaultLayoutID, Variable: "x", PX: 7, PY: 9}
	if _, err := s.Perform([]aeon.Event{jsonEvent(t, "sketch/model/layout/default/update_position", position)}); err != nil {
		t.Fatalf("update_position: %v", err)
	}

	if _, err := s.Perform([]aeon.Event{rawEvent("sketch/model/variable/x/remove")}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Perform([]aeon.Event{rawEvent("undo_stack/undo")}); err != nil {
		t.Fatalf("undo of remove: %v", err)
	}

	refreshed, err := s.Refresh([]string{"sketch", "model", "get_layout_nodes"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	nodes, err := aeon.UnmarshalPayload[[]sketch.LayoutNodeData](refreshed[0].Payload)
	if err != nil {
		t.Fatalf("decoding nodes: %v", err)
	}
	if diff := cmp.Diff([]sketch.LayoutNodeData{position}, nodes); diff != "" {
		t.Fatalf("restored nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRemoveRegulatedVariableFails(t *testing.T) {
	s := New("s1", nil)
	addVariable(t, s, "x")
	addVariable(t, s, "y")
	reg := sketch.RegulationData{
		Regulator: "x", Target: "y",
		Sign: sketch.MonotonicityActivation, Essential: sketch.EssentialityTrue,
	}
	if _, err := s.Perform([]aeon.Event{jsonEvent(t, "sketch/model/regulation/add", reg)}); err != nil {
		t.Fatalf("adding regulation: %v", err)
	}
	if _, err := s.Perform([]aeon.Event{rawEvent("sketch/model/variable/x/remove")}); err == nil {
		t.Fatalf("removing a regulating variable succeeded")
	}
}

func TestSessionTabBarDoesNotTouchUndoStack(t *testing.T) {
	s := New("s1", nil)
	addVariable(t, s, "x")

	changes, err := s.Perform([]aeon.Event{jsonEvent(t, "tab_bar/active", 3)})
	if err != nil {
		t.Fatalf("tab_bar set: %v", err)
	}
	if got := findChange[int](t, changes, "tab_bar/active"); got != 3 {
		t.Fatalf("tab_bar echo: got=%d want=3", got)
	}
	if !findChange[bool](t, changes, "undo_stack/can_undo") {
		t.Fatalf("tab_bar action cleared the undo stack")
	}

	refreshed, err := s.Refresh([]string{"tab_bar", "active"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	active, err := aeon.UnmarshalPayload[int](refreshed[0].Payload)
	if err != nil || active != 3 {
		t.Fatalf("refreshed tab_bar/active: got=%d err=%v", active, err)
	}
}

func TestSessionNewSketchClearsHistory(t *testing.T) {
	s := New("s1", nil)
	addVariable(t, s, "x")

	changes, err := s.Perform([]aeon.Event{rawEvent("sketch/new_sketch")})
	if err != nil {
		t.Fatalf("new_sketch: %v", err)
	}
	snapshot := findChange[sketch.SketchData](t, changes, "sketch/set_all")
	if len(snapshot.Model.Variables) != 0 {
		t.Fatalf("new sketch is not empty: %v", snapshot.Model.Variables)
	}
	if findChange[bool](t, changes, "undo_stack/can_undo") {
		t.Fatalf("undo history survived new_sketch")
	}
}

func TestSessionUnknownPathIsAnError(t *testing.T) {
	s := New("s1", nil)
	if _, err := s.Perform([]aeon.Event{rawEvent("sketch/model/nonsense")}); err == nil {
		t.Fatalf("invalid path accepted")
	}
	if _, err := s.Refresh([]string{"sketch", "nonsense"}); err == nil {
		t.Fatalf("invalid refresh path accepted")
	}
}

// memoryStore is an in-memory SketchStore for export/import tests.
type memoryStore struct {
	sketches map[string]sketch.SketchData
}

func (m *memoryStore) Load(name string) (sketch.SketchData, error) {
	data, ok := m.sketches[name]
	if !ok {
		return sketch.SketchData{}, fmt.Errorf("sketch %q not found", name)
	}
	return data, nil
}

func (m *memoryStore) Save(name string, data sketch.SketchData) error {
	if m.sketches == nil {
		m.sketches = make(map[string]sketch.SketchData)
	}
	m.sketches[name] = data
	return nil
}

func TestSessionExportImportRoundTrip(t *testing.T) {
	store := &memoryStore{}
	s := New("s1", store)
	addVariable(t, s, "x")

	if _, err := s.Perform([]aeon.Event{jsonEvent(t, "sketch/export_sketch", "mine")}); err != nil {
		t.Fatalf("export: %v", err)
	}

	other := New("s2", store)
	changes, err := other.Perform([]aeon.Event{jsonEvent(t, "sketch/import_sketch", "mine")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	snapshot := findChange[sketch.SketchData](t, changes, "sketch/set_all")
	if len(snapshot.Model.Variables) != 1 || snapshot.Model.Variables[0].ID != "x" {
		t.Fatalf("imported variables: %v", snapshot.Model.Variables)
	}
	if findChange[bool](t, changes, "undo_stack/can_undo") {
		t.Fatalf("import left undo history behind")
	}
}

func TestManagerRoutesBySession(t *testing.T) {
	m := NewManager(nil)
	first := m.Create()
	second := m.Create()
	if first == second {
		t.Fatalf("duplicate session ids")
	}

	v := sketch.VariableData{ID: "x", Name: "x"}
	if _, err := m.Perform(aeon.UserAction{
		Session: first,
		Events:  []aeon.Event{jsonEvent(t, "sketch/model/variable/add", v)},
	}); err != nil {
		t.Fatalf("perform on first session: %v", err)
	}

	// The second session is unaffected.
	refreshed, err := m.Refresh(aeon.RefreshRequest{Session: second, Path: []string{"sketch", "model", "get_variables"}})
	if err != nil {
		t.Fatalf("refresh on second session: %v", err)
	}
	variables, err := aeon.UnmarshalPayload[[]sketch.VariableData](refreshed[0].Payload)
	if err != nil {
		t.Fatalf("decoding variables: %v", err)
	}
	if len(variables) != 0 {
		t.Fatalf("second session saw first session's edit: %v", variables)
	}

	if _, err := m.Perform(aeon.UserAction{Session: "missing", Events: []aeon.Event{rawEvent("sketch/new_sketch")}}); err == nil {
		t.Fatalf("unknown session accepted")
	}

	m.Close(first)
	if _, err := m.Refresh(aeon.RefreshRequest{Session: first, Path: []string{"tab_bar", "active"}}); err == nil {
		t.Fatalf("closed session still reachable")
	}
}
