package session

import (
	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

// applyProperties handles events under sketch/properties, split into the
// dynamic and static branches.
func (s *Session) applyProperties(event aeon.Event, rest []string) (applied, error) {
	if len(rest) < 2 {
		return applied{}, invalidPath(event.Path)
	}
	switch rest[0] {
	case "dynamic":
		return s.applyDynProperties(event, rest[1:])
	case "static":
		return s.applyStatProperties(event, rest[1:])
	}
	return applied{}, invalidPath(event.Path)
}

func (s *Session) applyDynProperties(event aeon.Event, rest []string) (applied, error) {
	if len(rest) == 1 && rest[0] == "add" {
		data, err := aeon.UnmarshalPayload[sketch.DynPropertyData](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if err := s.state.addDynProp(data); err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "properties", "dynamic", "add"}, data),
			rawAction([]string{"sketch", "properties", "dynamic", data.ID, "remove"}),
		), nil
	}
	if len(rest) != 2 {
		return applied{}, invalidPath(event.Path)
	}
	id := rest[0]
	switch rest[1] {
	case "remove":
		removed, err := s.state.removeDynProp(id)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "properties", "dynamic", "remove"}, removed),
			jsonAction([]string{"sketch", "properties", "dynamic", "add"}, removed),
		), nil
	case "set_formula":
		formula, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		updated, oldFormula, err := s.state.setDynPropFormula(id, formula)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "properties", "dynamic", "set_formula"}, updated),
			jsonAction([]string{"sketch", "properties", "dynamic", id, "set_formula"}, oldFormula),
		), nil
	}
	return applied{}, invalidPath(event.Path)
}

func (s *Session) applyStatProperties(event aeon.Event, rest []string) (applied, error) {
	if len(rest) == 1 && rest[0] == "add" {
		data, err := aeon.UnmarshalPayload[sketch.StatPropertyData](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if err := s.state.addStatProp(data); err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "properties", "static", "add"}, data),
			rawAction([]string{"sketch", "properties", "static", data.ID, "remove"}),
		), nil
	}
	if len(rest) != 2 {
		return applied{}, invalidPath(event.Path)
	}
	id := rest[0]
	switch rest[1] {
	case "remove":
		removed, err := s.state.removeStatProp(id)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "properties", "static", "remove"}, removed),
			jsonAction([]string{"sketch", "properties", "static", "add"}, removed),
		), nil
	case "set_formula":
		formula, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		updated, oldFormula, err := s.state.setStatPropFormula(id, formula)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "properties", "static", "set_formula"}, updated),
			jsonAction([]string{"sketch", "properties", "static", id, "set_formula"}, oldFormula),
		), nil
	}
	return applied{}, invalidPath(event.Path)
}
