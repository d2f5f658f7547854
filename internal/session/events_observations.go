package session

import (
	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

// applyObservations handles events under sketch/observations: whole datasets
// and the observations inside them.
func (s *Session) applyObservations(event aeon.Event, rest []string) (applied, error) {
	if len(rest) == 0 {
		return applied{}, invalidPath(event.Path)
	}
	if len(rest) == 1 && rest[0] == "add" {
		data, err := aeon.UnmarshalPayload[sketch.DatasetData](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if err := s.state.addDataset(data); err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "observations", "add"}, data),
			rawAction([]string{"sketch", "observations", data.ID, "remove"}),
		), nil
	}

	datasetID := rest[0]
	if len(rest) == 2 {
		switch rest[1] {
		case "remove":
			removed, err := s.state.removeDataset(datasetID)
			if err != nil {
				return applied{}, err
			}
			return reversible(
				changeEvent([]string{"sketch", "observations", "remove"}, removed),
				jsonAction([]string{"sketch", "observations", "add"}, removed),
			), nil
		case "set_name":
			name, err := aeon.UnmarshalPayload[string](event.Payload)
			if err != nil {
				return applied{}, err
			}
			updated, oldName, err := s.state.setDatasetName(datasetID, name)
			if err != nil {
				return applied{}, err
			}
			return reversible(
				changeEvent([]string{"sketch", "observations", "set_name"}, updated.Meta()),
				jsonAction([]string{"sketch", "observations", datasetID, "set_name"}, oldName),
			), nil
		case "push_obs":
			obs, err := aeon.UnmarshalPayload[sketch.ObservationData](event.Payload)
			if err != nil {
				return applied{}, err
			}
			obs.Dataset = datasetID
			if err := s.state.pushObservation(obs); err != nil {
				return applied{}, err
			}
			return reversible(
				changeEvent([]string{"sketch", "observations", "push_obs"}, obs),
				rawAction([]string{"sketch", "observations", datasetID, obs.ID, "remove"}),
			), nil
		}
		return applied{}, invalidPath(event.Path)
	}

	if len(rest) == 3 && rest[2] == "remove" {
		obsID := rest[1]
		removed, err := s.state.removeObservation(datasetID, obsID)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "observations", "remove_obs"}, removed),
			jsonAction([]string{"sketch", "observations", datasetID, "push_obs"}, removed),
		), nil
	}
	return applied{}, invalidPath(event.Path)
}
