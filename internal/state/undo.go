package state

import "sketchbook/internal/aeon"

// UndoStackState exposes the backend undo stack: whether undo/redo are
// currently possible, and the triggers themselves. The stack contents never
// leave the backend; only these two flags do.
type UndoStackState struct {
	CanUndo *aeon.ObservableState[bool]
	CanRedo *aeon.ObservableState[bool]

	bridge *aeon.Bridge
}

func newUndoStackState(bridge *aeon.Bridge) *UndoStackState {
	return &UndoStackState{
		CanUndo: aeon.NewObservableState(bridge, []string{"undo_stack", "can_undo"}, false),
		CanRedo: aeon.NewObservableState(bridge, []string{"undo_stack", "can_redo"}, false),
		bridge:  bridge,
	}
}

// Undo asks the backend to revert the most recent recorded action.
func (u *UndoStackState) Undo() {
	u.bridge.EmitAction(aeon.Event{Path: []string{"undo_stack", "undo"}})
}

// Redo asks the backend to re-apply the most recently undone action.
func (u *UndoStackState) Redo() {
	u.bridge.EmitAction(aeon.Event{Path: []string{"undo_stack", "redo"}})
}
