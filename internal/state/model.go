package state

import (
	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

// ModelState covers the influence-graph editor: variables, regulations,
// uninterpreted functions, and node positions. Change notifications arrive
// on class-level paths carrying the affected object's data; list snapshots
// arrive on the get_* refresh paths.
type ModelState struct {
	VariableCreated         *aeon.Observable[sketch.VariableData]
	VariableRemoved         *aeon.Observable[sketch.VariableData]
	VariableNameChanged     *aeon.Observable[sketch.VariableData]
	VariableUpdateFnChanged *aeon.Observable[sketch.VariableData]
	VariableIDChanged       *aeon.Observable[sketch.ChangeIDData]

	RegulationCreated     *aeon.Observable[sketch.RegulationData]
	RegulationRemoved     *aeon.Observable[sketch.RegulationData]
	RegulationSignChanged *aeon.Observable[sketch.RegulationData]

	FnCreated           *aeon.Observable[sketch.UninterpretedFnData]
	FnRemoved           *aeon.Observable[sketch.UninterpretedFnData]
	FnNameChanged       *aeon.Observable[sketch.UninterpretedFnData]
	FnExpressionChanged *aeon.Observable[sketch.UninterpretedFnData]

	NodePositionChanged *aeon.Observable[sketch.LayoutNodeData]

	Variables        *aeon.ObservableState[[]sketch.VariableData]
	Regulations      *aeon.ObservableState[[]sketch.RegulationData]
	UninterpretedFns *aeon.ObservableState[[]sketch.UninterpretedFnData]
	Layouts          *aeon.ObservableState[[]sketch.LayoutData]
	LayoutNodes      *aeon.ObservableState[[]sketch.LayoutNodeData]

	bridge *aeon.Bridge
}

func newModelState(bridge *aeon.Bridge) *ModelState {
	variable := func(op string) []string { return []string{"sketch", "model", "variable", op} }
	regulation := func(op string) []string { return []string{"sketch", "model", "regulation", op} }
	fn := func(op string) []string { return []string{"sketch", "model", "uninterpreted_fn", op} }
	return &ModelState{
		VariableCreated:         aeon.NewObservable[sketch.VariableData](bridge, variable("add")),
		VariableRemoved:         aeon.NewObservable[sketch.VariableData](bridge, variable("remove")),
		VariableNameChanged:     aeon.NewObservable[sketch.VariableData](bridge, variable("set_name")),
		VariableUpdateFnChanged: aeon.NewObservable[sketch.VariableData](bridge, variable("set_update_fn")),
		VariableIDChanged:       aeon.NewObservable[sketch.ChangeIDData](bridge, variable("set_id")),

		RegulationCreated:     aeon.NewObservable[sketch.RegulationData](bridge, regulation("add")),
		RegulationRemoved:     aeon.NewObservable[sketch.RegulationData](bridge, regulation("remove")),
		RegulationSignChanged: aeon.NewObservable[sketch.RegulationData](bridge, regulation("set_sign")),

		FnCreated:           aeon.NewObservable[sketch.UninterpretedFnData](bridge, fn("add")),
		FnRemoved:           aeon.NewObservable[sketch.UninterpretedFnData](bridge, fn("remove")),
		FnNameChanged:       aeon.NewObservable[sketch.UninterpretedFnData](bridge, fn("set_name")),
		FnExpressionChanged: aeon.NewObservable[sketch.UninterpretedFnData](bridge, fn("set_expression")),

		NodePositionChanged: aeon.NewObservable[sketch.LayoutNodeData](bridge,
			[]string{"sketch", "model", "layout", "update_position"}),

		Variables: aeon.NewObservableState(bridge,
			[]string{"sketch", "model", "get_variables"}, []sketch.VariableData(nil)),
		Regulations: aeon.NewObservableState(bridge,
			[]string{"sketch", "model", "get_regulations"}, []sketch.RegulationData(nil)),
		UninterpretedFns: aeon.NewObservableState(bridge,
			[]string{"sketch", "model", "get_uninterpreted_fns"}, []sketch.UninterpretedFnData(nil)),
		Layouts: aeon.NewObservableState(bridge,
			[]string{"sketch", "model", "get_layouts"}, []sketch.LayoutData(nil)),
		LayoutNodes: aeon.NewObservableState(bridge,
			[]string{"sketch", "model", "get_layout_nodes"}, []sketch.LayoutNodeData(nil)),

		bridge: bridge,
	}
}

// AddVariable creates a variable and, in the same undo step, places its
// node at the given positions. An empty name falls back to the id.
func (m *ModelState) AddVariable(variable sketch.VariableData, positions []sketch.LayoutNodePrototype) {
	if variable.Name == "" {
		variable.Name = variable.ID
	}
	add, ok := jsonEvent(m.bridge, []string{"sketch", "model", "variable", "add"}, variable)
	if !ok {
		return
	}
	events := []aeon.Event{add}
	for _, position := range positions {
		move, ok := jsonEvent(m.bridge,
			[]string{"sketch", "model", "layout", position.Layout, "update_position"},
			sketch.LayoutNodeData{
				Layout:   position.Layout,
				Variable: variable.ID,
				PX:       position.PX,
				PY:       position.PY,
			})
		if !ok {
			return
		}
		events = append(events, move)
	}
	m.bridge.EmitAction(events...)
}

// RemoveVariable deletes a variable. The backend rejects the removal while
// regulations still touch the variable; use RemoveVariableWithRegulations
// to drop everything in one undo step.
func (m *ModelState) RemoveVariable(id string) {
	m.bridge.EmitAction(aeon.Event{Path: []string{"sketch", "model", "variable", id, "remove"}})
}

// RemoveVariableWithRegulations removes the given regulations and then the
// variable itself as one compound action.
func (m *ModelState) RemoveVariableWithRegulations(id string, regulations []sketch.RegulationData) {
	var events []aeon.Event
	for _, regulation := range regulations {
		events = append(events, aeon.Event{
			Path: []string{"sketch", "model", "regulation", regulation.Regulator, regulation.Target, "remove"},
		})
	}
	events = append(events, aeon.Event{Path: []string{"sketch", "model", "variable", id, "remove"}})
	m.bridge.EmitAction(events...)
}

// SetVariableName renames a variable; an empty name falls back to the id.
func (m *ModelState) SetVariableName(id, name string) {
	if name == "" {
		name = id
	}
	if event, ok := jsonEvent(m.bridge, []string{"sketch", "model", "variable", id, "set_name"}, name); ok {
		m.bridge.EmitAction(event)
	}
}

// SetVariableUpdateFn replaces a variable's update function expression.
func (m *ModelState) SetVariableUpdateFn(id, expression string) {
	if event, ok := jsonEvent(m.bridge, []string{"sketch", "model", "variable", id, "set_update_fn"}, expression); ok {
		m.bridge.EmitAction(event)
	}
}

// SetVariableID renames a variable's identifier everywhere it is used.
func (m *ModelState) SetVariableID(id, newID string) {
	if event, ok := jsonEvent(m.bridge, []string{"sketch", "model", "variable", id, "set_id"}, newID); ok {
		m.bridge.EmitAction(event)
	}
}

// AddRegulation creates a regulation edge.
func (m *ModelState) AddRegulation(regulation sketch.RegulationData) {
	if event, ok := jsonEvent(m.bridge, []string{"sketch", "model", "regulation", "add"}, regulation); ok {
		m.bridge.EmitAction(event)
	}
}

// RemoveRegulation deletes the edge between regulator and target.
func (m *ModelState) RemoveRegulation(regulator, target string) {
	m.bridge.EmitAction(aeon.Event{
		Path: []string{"sketch", "model", "regulation", regulator, target, "remove"},
	})
}

// SetRegulationSign changes the monotonicity of an edge.
func (m *ModelState) SetRegulationSign(regulator, target string, sign sketch.Monotonicity) {
	if event, ok := jsonEvent(m.bridge,
		[]string{"sketch", "model", "regulation", regulator, target, "set_sign"}, sign); ok {
		m.bridge.EmitAction(event)
	}
}

// AddUninterpretedFn creates an uninterpreted function; an empty name falls
// back to the id.
func (m *ModelState) AddUninterpretedFn(fn sketch.UninterpretedFnData) {
	if fn.Name == "" {
		fn.Name = fn.ID
	}
	if event, ok := jsonEvent(m.bridge, []string{"sketch", "model", "uninterpreted_fn", "add"}, fn); ok {
		m.bridge.EmitAction(event)
	}
}

// RemoveUninterpretedFn deletes an uninterpreted function.
func (m *ModelState) RemoveUninterpretedFn(id string) {
	m.bridge.EmitAction(aeon.Event{Path: []string{"sketch", "model", "uninterpreted_fn", id, "remove"}})
}

// SetFnName renames an uninterpreted function.
func (m *ModelState) SetFnName(id, name string) {
	if name == "" {
		name = id
	}
	if event, ok := jsonEvent(m.bridge, []string{"sketch", "model", "uninterpreted_fn", id, "set_name"}, name); ok {
		m.bridge.EmitAction(event)
	}
}

// SetFnExpression replaces an uninterpreted function's partial expression.
func (m *ModelState) SetFnExpression(id, expression string) {
	if event, ok := jsonEvent(m.bridge, []string{"sketch", "model", "uninterpreted_fn", id, "set_expression"}, expression); ok {
		m.bridge.EmitAction(event)
	}
}

// UpdateNodePosition moves one variable's node within its layout.
func (m *ModelState) UpdateNodePosition(node sketch.LayoutNodeData) {
	if event, ok := jsonEvent(m.bridge,
		[]string{"sketch", "model", "layout", node.Layout, "update_position"}, node); ok {
		m.bridge.EmitAction(event)
	}
}

// RefreshVariables re-requests the variable list snapshot.
func (m *ModelState) RefreshVariables() { m.Variables.Refresh() }

// RefreshRegulations re-requests the regulation list snapshot.
func (m *ModelState) RefreshRegulations() { m.Regulations.Refresh() }

// RefreshUninterpretedFns re-requests the function list snapshot.
func (m *ModelState) RefreshUninterpretedFns() { m.UninterpretedFns.Refresh() }

// RefreshLayouts re-requests the layout list snapshot.
func (m *ModelState) RefreshLayouts() { m.Layouts.Refresh() }

// RefreshLayoutNodes re-requests the node position snapshot.
func (m *ModelState) RefreshLayoutNodes() { m.LayoutNodes.Refresh() }
