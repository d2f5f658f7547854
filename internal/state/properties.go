package state

import (
	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

// PropertiesState covers dynamic and static properties. The two branches
// mirror each other apart from the payload type.
type PropertiesState struct {
	DynCreated        *aeon.Observable[sketch.DynPropertyData]
	DynRemoved        *aeon.Observable[sketch.DynPropertyData]
	DynFormulaChanged *aeon.Observable[sketch.DynPropertyData]

	StatCreated        *aeon.Observable[sketch.StatPropertyData]
	StatRemoved        *aeon.Observable[sketch.StatPropertyData]
	StatFormulaChanged *aeon.Observable[sketch.StatPropertyData]

	DynProperties  *aeon.ObservableState[[]sketch.DynPropertyData]
	StatProperties *aeon.ObservableState[[]sketch.StatPropertyData]

	bridge *aeon.Bridge
}

func newPropertiesState(bridge *aeon.Bridge) *PropertiesState {
	dynamic := func(op string) []string { return []string{"sketch", "properties", "dynamic", op} }
	static := func(op string) []string { return []string{"sketch", "properties", "static", op} }
	return &PropertiesState{
		DynCreated:        aeon.NewObservable[sketch.DynPropertyData](bridge, dynamic("add")),
		DynRemoved:        aeon.NewObservable[sketch.DynPropertyData](bridge, dynamic("remove")),
		DynFormulaChanged: aeon.NewObservable[sketch.DynPropertyData](bridge, dynamic("set_formula")),

		StatCreated:        aeon.NewObservable[sketch.StatPropertyData](bridge, static("add")),
		StatRemoved:        aeon.NewObservable[sketch.StatPropertyData](bridge, static("remove")),
		StatFormulaChanged: aeon.NewObservable[sketch.StatPropertyData](bridge, static("set_formula")),

		DynProperties: aeon.NewObservableState(bridge,
			[]string{"sketch", "properties", "get_dynamic"}, []sketch.DynPropertyData(nil)),
		StatProperties: aeon.NewObservableState(bridge,
			[]string{"sketch", "properties", "get_static"}, []sketch.StatPropertyData(nil)),

		bridge: bridge,
	}
}

// AddDynProperty creates a dynamic property.
func (p *PropertiesState) AddDynProperty(property sketch.DynPropertyData) {
	if property.Name == "" {
		property.Name = property.ID
	}
	if event, ok := jsonEvent(p.bridge, []string{"sketch", "properties", "dynamic", "add"}, property); ok {
		p.bridge.EmitAction(event)
	}
}

// RemoveDynProperty deletes a dynamic property.
func (p *PropertiesState) RemoveDynProperty(id string) {
	p.bridge.EmitAction(aeon.Event{Path: []string{"sketch", "properties", "dynamic", id, "remove"}})
}

// SetDynFormula replaces a dynamic property's HCTL formula.
func (p *PropertiesState) SetDynFormula(id, formula string) {
	if event, ok := jsonEvent(p.bridge,
		[]string{"sketch", "properties", "dynamic", id, "set_formula"}, formula); ok {
		p.bridge.EmitAction(event)
	}
}

// AddStatProperty creates a static property.
func (p *PropertiesState) AddStatProperty(property sketch.StatPropertyData) {
	if property.Name == "" {
		property.Name = property.ID
	}
	if event, ok := jsonEvent(p.bridge, []string{"sketch", "properties", "static", "add"}, property); ok {
		p.bridge.EmitAction(event)
	}
}

// RemoveStatProperty deletes a static property.
func (p *PropertiesState) RemoveStatProperty(id string) {
	p.bridge.EmitAction(aeon.Event{Path: []string{"sketch", "properties", "static", id, "remove"}})
}

// SetStatFormula replaces a static property's first-order formula.
func (p *PropertiesState) SetStatFormula(id, formula string) {
	if event, ok := jsonEvent(p.bridge,
		[]string{"sketch", "properties", "static", id, "set_formula"}, formula); ok {
		p.bridge.EmitAction(event)
	}
}

// RefreshDynProperties re-requests the dynamic property list snapshot.
func (p *PropertiesState) RefreshDynProperties() { p.DynProperties.Refresh() }

// RefreshStatProperties re-requests the static property list snapshot.
func (p *PropertiesState) RefreshStatProperties() { p.StatProperties.Refresh() }
