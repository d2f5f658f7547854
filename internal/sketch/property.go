package sketch

// DynPropertyData is a dynamic property of the sketch, expressed as a
// temporal-logic formula the backend interprets.
type DynPropertyData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Annotation string `json:"annotation"`
	Formula    string `json:"formula"`
}

// StatPropertyData is a static property of the sketch, expressed as a
// first-order formula the backend interprets.
type StatPropertyData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Annotation string `json:"annotation"`
	Formula    string `json:"formula"`
}

// SketchData is the whole-sketch snapshot: the model, the datasets with
// their observations, and both property lists. This is the payload of the
// get_whole_sketch refresh and of sketch import/export.
type SketchData struct {
	Model          ModelData          `json:"model"`
	Datasets       []DatasetData      `json:"datasets"`
	DynProperties  []DynPropertyData  `json:"dyn_properties"`
	StatProperties []StatPropertyData `json:"stat_properties"`
	Annotation     string             `json:"annotation"`
}
