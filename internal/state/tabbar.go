package state

import "sketchbook/internal/aeon"

// TabBarState mirrors the editor's tab bar: which tab is active and which
// are pinned. Both slots are writable; the backend echoes writes back on the
// same paths.
type TabBarState struct {
	Active *aeon.MutableObservableState[int]
	Pinned *aeon.MutableObservableState[[]int]
}

func newTabBarState(bridge *aeon.Bridge) *TabBarState {
	return &TabBarState{
		Active: aeon.NewMutableObservableState(bridge, []string{"tab_bar", "active"}, 0),
		Pinned: aeon.NewMutableObservableState(bridge, []string{"tab_bar", "pinned"}, []int(nil)),
	}
}

// Pin adds a tab to the pinned list and emits the whole new list.
func (t *TabBarState) Pin(tab int) {
	pinned := t.Pinned.Value()
	for _, existing := range pinned {
		if existing == tab {
			return
		}
	}
	t.Pinned.EmitValue(append(append([]int(nil), pinned...), tab))
}

// Unpin removes a tab from the pinned list and emits the whole new list.
func (t *TabBarState) Unpin(tab int) {
	pinned := t.Pinned.Value()
	next := make([]int, 0, len(pinned))
	for _, existing := range pinned {
		if existing != tab {
			next = append(next, existing)
		}
	}
	if len(next) == len(pinned) {
		return
	}
	t.Pinned.EmitValue(next)
}
