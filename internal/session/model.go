package session

import (
	"fmt"

	"sketchbook/internal/sketch"
)

// DefaultLayoutID names the layout every new sketch starts with.
const DefaultLayoutID = "default"

// sketchState is the backend's in-memory copy of one sketch. Mutators apply
// edits structurally (ids must exist, duplicates are rejected) and leave all
// deeper semantics to the analysis code; slices keep insertion order so that
// refreshes are deterministic.
type sketchState struct {
	variables   []sketch.VariableData
	regulations []sketch.RegulationData
	fns         []sketch.UninterpretedFnData
	layouts     []sketch.LayoutData
	nodes       []sketch.LayoutNodeData
	datasets    []sketch.DatasetData
	dynProps    []sketch.DynPropertyData
	statProps   []sketch.StatPropertyData
	annotation  string
}

func newSketchState() *sketchState {
	return &sketchState{
		layouts: []sketch.LayoutData{{ID: DefaultLayoutID, Name: "default"}},
	}
}

// snapshot renders the whole sketch for get_whole_sketch and export.
func (s *sketchState) snapshot() sketch.SketchData {
	return sketch.SketchData{
		Model: sketch.ModelData{
			Variables:        append([]sketch.VariableData(nil), s.variables...),
			Regulations:      append([]sketch.RegulationData(nil), s.regulations...),
			UninterpretedFns: append([]sketch.UninterpretedFnData(nil), s.fns...),
			Layouts:          append([]sketch.LayoutData(nil), s.layouts...),
			LayoutNodes:      append([]sketch.LayoutNodeData(nil), s.nodes...),
		},
		Datasets:       append([]sketch.DatasetData(nil), s.datasets...),
		DynProperties:  append([]sketch.DynPropertyData(nil), s.dynProps...),
		StatProperties: append([]sketch.StatPropertyData(nil), s.statProps...),
		Annotation:     s.annotation,
	}
}

// restore replaces the whole state with an imported snapshot.
func (s *sketchState) restore(data sketch.SketchData) {
	s.variables = append([]sketch.VariableData(nil), data.Model.Variables...)
	s.regulations = append([]sketch.RegulationData(nil), data.Model.Regulations...)
	s.fns = append([]sketch.UninterpretedFnData(nil), data.Model.UninterpretedFns...)
	s.layouts = append([]sketch.LayoutData(nil), data.Model.Layouts...)
	s.nodes = append([]sketch.LayoutNodeData(nil), data.Model.LayoutNodes...)
	s.datasets = append([]sketch.DatasetData(nil), data.Datasets...)
	s.dynProps = append([]sketch.DynPropertyData(nil), data.DynProperties...)
	s.statProps = append([]sketch.StatPropertyData(nil), data.StatProperties...)
	s.annotation = data.Annotation
	if len(s.layouts) == 0 {
		s.layouts = []sketch.LayoutData{{ID: DefaultLayoutID, Name: "default"}}
	}
}

func (s *sketchState) findVariable(id string) int {
	for i, v := range s.variables {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func (s *sketchState) addVariable(v sketch.VariableData) error {
	if v.ID == "" {
		return fmt.Errorf("variable id is empty")
	}
	if s.findVariable(v.ID) >= 0 {
		return fmt.Errorf("variable %q already exists", v.ID)
	}
	s.variables = append(s.variables, v)
	// Every variable gets a node in every layout; positions start at the
	// origin until an update_position moves them.
	for _, layout := range s.layouts {
		s.nodes = append(s.nodes, sketch.LayoutNodeData{Layout: layout.ID, Variable: v.ID})
	}
	return nil
}

// removeVariable drops the variable and its layout nodes. The removed nodes
// are returned so the reversal can restore positions. Variables still used
// by regulations cannot be removed; the UI removes the regulations in the
// same compound action first.
func (s *sketchState) removeVariable(id string) (sketch.VariableData, []sketch.LayoutNodeData, error) {
	i := s.findVariable(id)
	if i < 0 {
		return sketch.VariableData{}, nil, fmt.Errorf("variable %q does not exist", id)
	}
	for _, r := range s.regulations {
		if r.Regulator == id || r.Target == id {
			return sketch.VariableData{}, nil, fmt.Errorf(
				"variable %q is still regulated or regulating", id)
		}
	}
	removed := s.variables[i]
	s.variables = append(s.variables[:i], s.variables[i+1:]...)

	var removedNodes []sketch.LayoutNodeData
	kept := s.nodes[:0]
	for _, n := range s.nodes {
		if n.Variable == id {
			removedNodes = append(removedNodes, n)
			continue
		}
		kept = append(kept, n)
	}
	s.nodes = kept
	return removed, removedNodes, nil
}

func (s *sketchState) setVariableName(id, name string) (sketch.VariableData, string, error) {
	i := s.findVariable(id)
	if i < 0 {
		return sketch.VariableData{}, "", fmt.Errorf("variable %q does not exist", id)
	}
	old := s.variables[i].Name
	s.variables[i].Name = name
	return s.variables[i], old, nil
}

func (s *sketchState) setVariableUpdateFn(id, expression string) (sketch.VariableData, string, error) {
	i := s.findVariable(id)
	if i < 0 {
		return sketch.VariableData{}, "", fmt.Errorf("variable %q does not exist", id)
	}
	old := s.variables[i].UpdateFn
	s.variables[i].UpdateFn = expression
	return s.variables[i], old, nil
}

// setVariableID renames the variable and rewrites every reference to it.
func (s *sketchState) setVariableID(id, newID string) error {
	if newID == "" {
		return fmt.Errorf("variable id is empty")
	}
	i := s.findVariable(id)
	if i < 0 {
		return fmt.Errorf("variable %q does not exist", id)
	}
	if id == newID {
		return nil
	}
	if s.findVariable(newID) >= 0 {
		return fmt.Errorf("variable %q already exists", newID)
	}
	s.variables[i].ID = newID
	for j := range s.regulations {
		if s.regulations[j].Regulator == id {
			s.regulations[j].Regulator = newID
		}
		if s.regulations[j].Target == id {
			s.regulations[j].Target = newID
		}
	}
	for j := range s.nodes {
		if s.nodes[j].Variable == id {
			s.nodes[j].Variable = newID
		}
	}
	return nil
}

func (s *sketchState) findRegulation(regulator, target string) int {
	for i, r := range s.regulations {
		if r.Regulator == regulator && r.Target == target {
			return i
		}
	}
	return -1
}

func (s *sketchState) addRegulation(r sketch.RegulationData) error {
	if s.findVariable(r.Regulator) < 0 {
		return fmt.Errorf("regulator %q does not exist", r.Regulator)
	}
	if s.findVariable(r.Target) < 0 {
		return fmt.Errorf("target %q does not exist", r.Target)
	}
	if s.findRegulation(r.Regulator, r.Target) >= 0 {
		return fmt.Errorf("regulation %s -> %s already exists", r.Regulator, r.Target)
	}
	s.regulations = append(s.regulations, r)
	return nil
}

func (s *sketchState) removeRegulation(regulator, target string) (sketch.RegulationData, error) {
	i := s.findRegulation(regulator, target)
	if i < 0 {
		return sketch.RegulationData{}, fmt.Errorf(
			"regulation %s -> %s does not exist", regulator, target)
	}
	removed := s.regulations[i]
	s.regulations = append(s.regulations[:i], s.regulations[i+1:]...)
	return removed, nil
}

func (s *sketchState) setRegulationSign(regulator, target string, sign sketch.Monotonicity) (sketch.RegulationData, sketch.Monotonicity, error) {
	i := s.findRegulation(regulator, target)
	if i < 0 {
		return sketch.RegulationData{}, "", fmt.Errorf(
			"regulation %s -> %s does not exist", regulator, target)
	}
	old := s.regulations[i].Sign
	s.regulations[i].Sign = sign
	return s.regulations[i], old, nil
}

func (s *sketchState) findFn(id string) int {
	for i, f := range s.fns {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *sketchState) addFn(f sketch.UninterpretedFnData) error {
	if f.ID == "" {
		return fmt.Errorf("function id is empty")
	}
	if s.findFn(f.ID) >= 0 {
		return fmt.Errorf("function %q already exists", f.ID)
	}
	s.fns = append(s.fns, f)
	return nil
}

func (s *sketchState) removeFn(id string) (sketch.UninterpretedFnData, error) {
	i := s.findFn(id)
	if i < 0 {
		return sketch.UninterpretedFnData{}, fmt.Errorf("function %q does not exist", id)
	}
	removed := s.fns[i]
	s.fns = append(s.fns[:i], s.fns[i+1:]...)
	return removed, nil
}

func (s *sketchState) setFnName(id, name string) (sketch.UninterpretedFnData, string, error) {
	i := s.findFn(id)
	if i < 0 {
		return sketch.UninterpretedFnData{}, "", fmt.Errorf("function %q does not exist", id)
	}
	old := s.fns[i].Name
	s.fns[i].Name = name
	return s.fns[i], old, nil
}

func (s *sketchState) setFnExpression(id, expression string) (sketch.UninterpretedFnData, string, error) {
	i := s.findFn(id)
	if i < 0 {
		return sketch.UninterpretedFnData{}, "", fmt.Errorf("function %q does not exist", id)
	}
	old := s.fns[i].Expression
	s.fns[i].Expression = expression
	return s.fns[i], old, nil
}

func (s *sketchState) findNode(layout, variable string) int {
	for i, n := range s.nodes {
		if n.Layout == layout && n.Variable == variable {
			return i
		}
	}
	return -1
}

func (s *sketchState) updatePosition(node sketch.LayoutNodeData) (sketch.LayoutNodeData, error) {
	i := s.findNode(node.Layout, node.Variable)
	if i < 0 {
		return sketch.LayoutNodeData{}, fmt.Errorf(
			"no node for variable %q in layout %q", node.Variable, node.Layout)
	}
	old := s.nodes[i]
	s.nodes[i] = node
	return old, nil
}

func (s *sketchState) findDataset(id string) int {
	for i, d := range s.datasets {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *sketchState) addDataset(d sketch.DatasetData) error {
	if d.ID == "" {
		return fmt.Errorf("dataset id is empty")
	}
	if s.findDataset(d.ID) >= 0 {
		return fmt.Errorf("dataset %q already exists", d.ID)
	}
	s.datasets = append(s.datasets, d)
	return nil
}

func (s *sketchState) removeDataset(id string) (sketch.DatasetData, error) {
	i := s.findDataset(id)
	if i < 0 {
		return sketch.DatasetData{}, fmt.Errorf("dataset %q does not exist", id)
	}
	removed := s.datasets[i]
	s.datasets = append(s.datasets[:i], s.datasets[i+1:]...)
	return removed, nil
}

func (s *sketchState) setDatasetName(id, name string) (sketch.DatasetData, string, error) {
	i := s.findDataset(id)
	if i < 0 {
		return sketch.DatasetData{}, "", fmt.Errorf("dataset %q does not exist", id)
	}
	old := s.datasets[i].Name
	s.datasets[i].Name = name
	return s.datasets[i], old, nil
}

func (s *sketchState) pushObservation(obs sketch.ObservationData) error {
	i := s.findDataset(obs.Dataset)
	if i < 0 {
		return fmt.Errorf("dataset %q does not exist", obs.Dataset)
	}
	for _, existing := range s.datasets[i].Observations {
		if existing.ID == obs.ID {
			return fmt.Errorf("observation %q already exists in dataset %q", obs.ID, obs.Dataset)
		}
	}
	s.datasets[i].Observations = append(s.datasets[i].Observations, obs)
	return nil
}

func (s *sketchState) removeObservation(datasetID, obsID string) (sketch.ObservationData, error) {
	i := s.findDataset(datasetID)
	if i < 0 {
		return sketch.ObservationData{}, fmt.Errorf("dataset %q does not exist", datasetID)
	}
	observations := s.datasets[i].Observations
	for j, obs := range observations {
		if obs.ID == obsID {
			s.datasets[i].Observations = append(observations[:j], observations[j+1:]...)
			return obs, nil
		}
	}
	return sketch.ObservationData{}, fmt.Errorf(
		"observation %q does not exist in dataset %q", obsID, datasetID)
}

func (s *sketchState) findDynProp(id string) int {
	for i, p := range s.dynProps {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *sketchState) addDynProp(p sketch.DynPropertyData) error {
	if p.ID == "" {
		return fmt.Errorf("property id is empty")
	}
	if s.findDynProp(p.ID) >= 0 {
		return fmt.Errorf("dynamic property %q already exists", p.ID)
	}
	s.dynProps = append(s.dynProps, p)
	return nil
}

func (s *sketchState) removeDynProp(id string) (sketch.DynPropertyData, error) {
	i := s.findDynProp(id)
	if i < 0 {
		return sketch.DynPropertyData{}, fmt.Errorf("dynamic property %q does not exist", id)
	}
	removed := s.dynProps[i]
	s.dynProps = append(s.dynProps[:i], s.dynProps[i+1:]...)
	return removed, nil
}

func (s *sketchState) setDynPropFormula(id, formula string) (sketch.DynPropertyData, string, error) {
	i := s.findDynProp(id)
	if i < 0 {
		return sketch.DynPropertyData{}, "", fmt.Errorf("dynamic property %q does not exist", id)
	}
	old := s.dynProps[i].Formula
	s.dynProps[i].Formula = formula
	return s.dynProps[i], old, nil
}

func (s *sketchState) findStatProp(id string) int {
	for i, p := range s.statProps {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *sketchState) addStatProp(p sketch.StatPropertyData) error {
	if p.ID == "" {
		return fmt.Errorf("property id is empty")
	}
	if s.findStatProp(p.ID) >= 0 {
		return fmt.Errorf("static property %q already exists", p.ID)
	}
	s.statProps = append(s.statProps, p)
	return nil
}

func (s *sketchState) removeStatProp(id string) (sketch.StatPropertyData, error) {
	i := s.findStatProp(id)
	if i < 0 {
		return sketch.StatPropertyData{}, fmt.Errorf("static property %q does not exist", id)
	}
	removed := s.statProps[i]
	s.statProps = append(s.statProps[:i], s.statProps[i+1:]...)
	return removed, nil
}

func (s *sketchState) setStatPropFormula(id, formula string) (sketch.StatPropertyData, string, error) {
	i := s.findStatProp(id)
	if i < 0 {
		return sketch.StatPropertyData{}, "", fmt.Errorf("static property %q does not exist", id)
	}
	old := s.statProps[i].Formula
	s.statProps[i].Formula = formula
	return s.statProps[i], old, nil
}
