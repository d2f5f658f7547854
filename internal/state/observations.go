package state

import (
	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

// ObservationsState covers the dataset editor. Dataset-level changes carry
// the full dataset (or its metadata for renames); observation-level changes
// carry a single observation tagged with its dataset.
type ObservationsState struct {
	DatasetCreated     *aeon.Observable[sketch.DatasetData]
	DatasetRemoved     *aeon.Observable[sketch.DatasetData]
	DatasetNameChanged *aeon.Observable[sketch.DatasetMetaData]

	ObservationPushed  *aeon.Observable[sketch.ObservationData]
	ObservationRemoved *aeon.Observable[sketch.ObservationData]

	Datasets *aeon.ObservableState[[]sketch.DatasetData]

	bridge *aeon.Bridge
}

func newObservationsState(bridge *aeon.Bridge) *ObservationsState {
	obs := func(op string) []string { return []string{"sketch", "observations", op} }
	return &ObservationsState{
		DatasetCreated:     aeon.NewObservable[sketch.DatasetData](bridge, obs("add")),
		DatasetRemoved:     aeon.NewObservable[sketch.DatasetData](bridge, obs("remove")),
		DatasetNameChanged: aeon.NewObservable[sketch.DatasetMetaData](bridge, obs("set_name")),
		ObservationPushed:  aeon.NewObservable[sketch.ObservationData](bridge, obs("push_obs")),
		ObservationRemoved: aeon.NewObservable[sketch.ObservationData](bridge, obs("remove_obs")),
		Datasets: aeon.NewObservableState(bridge,
			[]string{"sketch", "observations", "get_datasets"}, []sketch.DatasetData(nil)),
		bridge: bridge,
	}
}

// AddDataset creates a dataset, including any observations it already holds.
func (o *ObservationsState) AddDataset(dataset sketch.DatasetData) {
	if dataset.Name == "" {
		dataset.Name = dataset.ID
	}
	if event, ok := jsonEvent(o.bridge, []string{"sketch", "observations", "add"}, dataset); ok {
		o.bridge.EmitAction(event)
	}
}

// RemoveDataset deletes a dataset and everything in it.
func (o *ObservationsState) RemoveDataset(id string) {
	o.bridge.EmitAction(aeon.Event{Path: []string{"sketch", "observations", id, "remove"}})
}

// SetDatasetName renames a dataset; an empty name falls back to the id.
func (o *ObservationsState) SetDatasetName(id, name string) {
	if name == "" {
		name = id
	}
	if event, ok := jsonEvent(o.bridge, []string{"sketch", "observations", id, "set_name"}, name); ok {
		o.bridge.EmitAction(event)
	}
}

// PushObservation appends an observation to the dataset.
func (o *ObservationsState) PushObservation(datasetID string, observation sketch.ObservationData) {
	if event, ok := jsonEvent(o.bridge,
		[]string{"sketch", "observations", datasetID, "push_obs"}, observation); ok {
		o.bridge.EmitAction(event)
	}
}

// RemoveObservation deletes one observation from its dataset.
func (o *ObservationsState) RemoveObservation(datasetID, observationID string) {
	o.bridge.EmitAction(aeon.Event{
		Path: []string{"sketch", "observations", datasetID, observationID, "remove"},
	})
}

// RefreshDatasets re-requests the dataset list snapshot.
func (o *ObservationsState) RefreshDatasets() { o.Datasets.Refresh() }
