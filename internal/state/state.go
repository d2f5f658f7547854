// Package state builds the typed observable tree the UI consumes, on top of
// one event bridge. Every path the backend can emit on gets exactly one
// Observable or ObservableState here, created eagerly when the tree is
// constructed; domain setters build the corresponding user actions and are
// the only write path.
//
// The tree is an explicit context object: construct it once per process
// with New and hand it to whatever owns the UI. Tests construct isolated
// trees bound to fake or loopback transports.
package state

import (
	"fmt"

	"sketchbook/internal/aeon"
)

// State is the root of the observable tree.
type State struct {
	UndoStack *UndoStackState
	TabBar    *TabBarState
	Sketch    *SketchState

	// Error receives backend-reported failures (rejected actions, invalid
	// refresh paths). The UI shows them in the error dialog.
	Error *aeon.Observable[string]

	bridge *aeon.Bridge
}

// New builds the whole tree and registers every observable with the bridge.
func New(bridge *aeon.Bridge) *State {
	return &State{
		UndoStack: newUndoStackState(bridge),
		TabBar:    newTabBarState(bridge),
		Sketch:    newSketchState(bridge),
		Error:     aeon.NewObservable[string](bridge, []string{"error"}),
		bridge:    bridge,
	}
}

// Bridge exposes the underlying bridge for callers composing their own
// compound actions out of several setters.
func (s *State) Bridge() *aeon.Bridge {
	return s.bridge
}

// RefreshAll re-requests everything the tree observes as retained state.
// Used after reconnecting, and on initial load.
func (s *State) RefreshAll() {
	s.UndoStack.CanUndo.Refresh()
	s.UndoStack.CanRedo.Refresh()
	s.TabBar.Active.Refresh()
	s.TabBar.Pinned.Refresh()
	s.Sketch.RefreshWholeSketch()
}

// jsonEvent builds an action event, reporting encoding failures through the
// bridge's reporter. The bool result is false when the event is unusable.
func jsonEvent(bridge *aeon.Bridge, path []string, value any) (aeon.Event, bool) {
	event, err := aeon.NewJSONEvent(path, value)
	if err != nil {
		bridge.Reporter().Report("Internal app error", fmt.Sprintf(
			"Cannot encode action at %s: %v", aeon.PathString(path), err))
		return aeon.Event{}, false
	}
	return event, true
}
