package state

import (
	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

// SketchState groups everything under the sketch subtree: the model editor,
// the datasets, the properties, and the sketch-level operations (new,
// export, import, whole-sketch refresh).
type SketchState struct {
	Model        *ModelState
	Observations *ObservationsState
	Properties   *PropertiesState

	// Replaced fires when the backend swaps the entire sketch (new_sketch,
	// import_sketch); consumers rebuild all views from the snapshot.
	Replaced *aeon.Observable[sketch.SketchData]
	// WholeSketch answers the explicit whole-sketch refresh.
	WholeSketch *aeon.Observable[sketch.SketchData]
	// Exported confirms a completed export with the sketch name.
	Exported *aeon.Observable[string]
	// Annotation is the free-form note attached to the whole sketch.
	Annotation *aeon.MutableObservableState[string]

	bridge *aeon.Bridge
}

func newSketchState(bridge *aeon.Bridge) *SketchState {
	return &SketchState{
		Model:        newModelState(bridge),
		Observations: newObservationsState(bridge),
		Properties:   newPropertiesState(bridge),
		Replaced:     aeon.NewObservable[sketch.SketchData](bridge, []string{"sketch", "set_all"}),
		WholeSketch:  aeon.NewObservable[sketch.SketchData](bridge, []string{"sketch", "get_whole_sketch"}),
		Exported:     aeon.NewObservable[string](bridge, []string{"sketch", "export_sketch"}),
		Annotation:   aeon.NewMutableObservableState(bridge, []string{"sketch", "set_annotation"}, ""),
		bridge:       bridge,
	}
}

// NewSketch throws the current sketch away and starts over. Clears the undo
// history.
func (s *SketchState) NewSketch() {
	s.bridge.EmitAction(aeon.Event{Path: []string{"sketch", "new_sketch"}})
}

// Export saves the current sketch under name in the backend's store.
func (s *SketchState) Export(name string) {
	if event, ok := jsonEvent(s.bridge, []string{"sketch", "export_sketch"}, name); ok {
		s.bridge.EmitAction(event)
	}
}

// Import replaces the current sketch with the stored one. Clears the undo
// history.
func (s *SketchState) Import(name string) {
	if event, ok := jsonEvent(s.bridge, []string{"sketch", "import_sketch"}, name); ok {
		s.bridge.EmitAction(event)
	}
}

// RefreshWholeSketch requests the full snapshot through WholeSketch.
func (s *SketchState) RefreshWholeSketch() {
	s.bridge.Refresh([]string{"sketch", "get_whole_sketch"})
}
