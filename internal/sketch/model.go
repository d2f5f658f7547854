// Package sketch holds the wire-level data shapes exchanged between the
// sketchbook UI and the backend session. They are deliberately flat: ids and
// expressions travel as plain strings, and the backend is the authority on
// whatever deeper structure they have.
package sketch

// Monotonicity describes the sign of a regulation, or of one argument of an
// uninterpreted function.
type Monotonicity string

const (
	MonotonicityActivation Monotonicity = "Activation"
	MonotonicityInhibition Monotonicity = "Inhibition"
	MonotonicityDual       Monotonicity = "Dual"
	MonotonicityUnknown    Monotonicity = "Unknown"
)

// Essentiality describes whether a regulation must have an observable effect.
type Essentiality string

const (
	EssentialityTrue    Essentiality = "True"
	EssentialityFalse   Essentiality = "False"
	EssentialityUnknown Essentiality = "Unknown"
)

// VariableData carries one network variable together with its update
// function expression.
type VariableData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Annotation string `json:"annotation"`
	UpdateFn   string `json:"update_fn"`
}

// VariableWithLayoutData is the payload for creating a variable together
// with its initial position in one or more layouts, so that the whole edit
// is one undo step.
type VariableWithLayoutData struct {
	Variable VariableData          `json:"variable"`
	Layouts  []LayoutNodePrototype `json:"layouts"`
}

// RegulationData carries one regulation edge of the influence graph.
type RegulationData struct {
	Regulator string       `json:"regulator"`
	Target    string       `json:"target"`
	Sign      Monotonicity `json:"sign"`
	Essential Essentiality `json:"essential"`
}

// FnArgumentData is the per-argument sign and essentiality of an
// uninterpreted function.
type FnArgumentData struct {
	Monotonicity Monotonicity `json:"monotonicity"`
	Essential    Essentiality `json:"essential"`
}

// UninterpretedFnData carries one uninterpreted (partially specified)
// function of the sketch.
type UninterpretedFnData struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Annotation string           `json:"annotation"`
	Arguments  []FnArgumentData `json:"arguments"`
	Expression string           `json:"expression"`
}

// LayoutData identifies one layout of the influence graph.
type LayoutData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LayoutNodeData is the position of one variable's node in one layout.
type LayoutNodeData struct {
	Layout   string  `json:"layout"`
	Variable string  `json:"variable"`
	PX       float64 `json:"px"`
	PY       float64 `json:"py"`
}

// LayoutNodePrototype is a position for a variable that does not have an id
// yet (used while the variable itself is being created).
type LayoutNodePrototype struct {
	Layout string  `json:"layout"`
	PX     float64 `json:"px"`
	PY     float64 `json:"py"`
}

// ChangeIDData reports a rename of some identified object. Metadata carries
// optional context such as the id of the parent component; it is usually
// empty.
type ChangeIDData struct {
	OriginalID string `json:"original_id"`
	NewID      string `json:"new_id"`
	Metadata   string `json:"metadata,omitempty"`
}

// ModelData is the full influence-graph part of a sketch.
type ModelData struct {
	Variables        []VariableData        `json:"variables"`
	Regulations      []RegulationData      `json:"regulations"`
	UninterpretedFns []UninterpretedFnData `json:"uninterpreted_fns"`
	Layouts          []LayoutData          `json:"layouts"`
	LayoutNodes      []LayoutNodeData      `json:"layout_nodes"`
}
