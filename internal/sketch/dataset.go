package sketch

// ObservationData is one row of a dataset: a string of per-variable values
// ("0", "1" or "*" per position) plus identification and annotation.
type ObservationData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Annotation string `json:"annotation"`
	Dataset    string `json:"dataset"`
	Values     string `json:"values"`
}

// DatasetData is a dataset with all of its observations.
type DatasetData struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Annotation   string            `json:"annotation"`
	Observations []ObservationData `json:"observations"`
	Variables    []string          `json:"variables"`
}

// DatasetMetaData is a dataset without its observations, used where only the
// header is needed.
type DatasetMetaData struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Variables []string `json:"variables"`
}

// Meta strips the observations from the dataset.
func (d DatasetData) Meta() DatasetMetaData {
	return DatasetMetaData{ID: d.ID, Name: d.Name, Variables: d.Variables}
}
