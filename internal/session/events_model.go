package session

import (
	"sketchbook/internal/aeon"
	"sketchbook/internal/sketch"
)

// applyModel handles events under sketch/model: variables, regulations,
// uninterpreted functions, and layout node positions. State changes are
// emitted on class-level paths (e.g. sketch/model/variable/set_name) with
// the affected object's full data as payload; reversals address the object
// by id the same way user actions do.
func (s *Session) applyModel(event aeon.Event, rest []string) (applied, error) {
	if len(rest) == 0 {
		return applied{}, invalidPath(event.Path)
	}
	switch rest[0] {
	case "variable":
		return s.applyVariable(event, rest[1:])
	case "regulation":
		return s.applyRegulation(event, rest[1:])
	case "uninterpreted_fn":
		return s.applyFn(event, rest[1:])
	case "layout":
		return s.applyLayout(event, rest[1:])
	}
	return applied{}, invalidPath(event.Path)
}

func (s *Session) applyVariable(event aeon.Event, rest []string) (applied, error) {
	if len(rest) == 1 && rest[0] == "add" {
		data, err := aeon.UnmarshalPayload[sketch.VariableData](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if err := s.state.addVariable(data); err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "variable", "add"}, data),
			rawAction([]string{"sketch", "model", "variable", data.ID, "remove"}),
		), nil
	}
	if len(rest) != 2 {
		return applied{}, invalidPath(event.Path)
	}
	id := rest[0]
	switch rest[1] {
	case "remove":
		removed, nodes, err := s.state.removeVariable(id)
		if err != nil {
			return applied{}, err
		}
		// Re-adding restores nodes at the origin, so the reversal also
		// replays the stored positions.
		reverse := jsonAction([]string{"sketch", "model", "variable", "add"}, removed)
		for _, node := range nodes {
			reverse = append(reverse, jsonAction(
				[]string{"sketch", "model", "layout", node.Layout, "update_position"}, node)...)
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "variable", "remove"}, removed),
			reverse,
		), nil
	case "set_name":
		name, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		updated, oldName, err := s.state.setVariableName(id, name)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "variable", "set_name"}, updated),
			jsonAction([]string{"sketch", "model", "variable", id, "set_name"}, oldName),
		), nil
	case "set_update_fn":
		expression, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		updated, oldFn, err := s.state.setVariableUpdateFn(id, expression)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "variable", "set_update_fn"}, updated),
			jsonAction([]string{"sketch", "model", "variable", id, "set_update_fn"}, oldFn),
		), nil
	case "set_id":
		newID, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if err := s.state.setVariableID(id, newID); err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "variable", "set_id"},
				sketch.ChangeIDData{OriginalID: id, NewID: newID}),
			jsonAction([]string{"sketch", "model", "variable", newID, "set_id"}, id),
		), nil
	}
	return applied{}, invalidPath(event.Path)
}

func (s *Session) applyRegulation(event aeon.Event, rest []string) (applied, error) {
	if len(rest) == 1 && rest[0] == "add" {
		data, err := aeon.UnmarshalPayload[sketch.RegulationData](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if err := s.state.addRegulation(data); err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "regulation", "add"}, data),
			rawAction([]string{"sketch", "model", "regulation", data.Regulator, data.Target, "remove"}),
		), nil
	}
	if len(rest) != 3 {
		return applied{}, invalidPath(event.Path)
	}
	regulator, target := rest[0], rest[1]
	switch rest[2] {
	case "remove":
		removed, err := s.state.removeRegulation(regulator, target)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "regulation", "remove"}, removed),
			jsonAction([]string{"sketch", "model", "regulation", "add"}, removed),
		), nil
	case "set_sign":
		sign, err := aeon.UnmarshalPayload[sketch.Monotonicity](event.Payload)
		if err != nil {
			return applied{}, err
		}
		updated, oldSign, err := s.state.setRegulationSign(regulator, target, sign)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "regulation", "set_sign"}, updated),
			jsonAction([]string{"sketch", "model", "regulation", regulator, target, "set_sign"}, oldSign),
		), nil
	}
	return applied{}, invalidPath(event.Path)
}

func (s *Session) applyFn(event aeon.Event, rest []string) (applied, error) {
	if len(rest) == 1 && rest[0] == "add" {
		data, err := aeon.UnmarshalPayload[sketch.UninterpretedFnData](event.Payload)
		if err != nil {
			return applied{}, err
		}
		if err := s.state.addFn(data); err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "uninterpreted_fn", "add"}, data),
			rawAction([]string{"sketch", "model", "uninterpreted_fn", data.ID, "remove"}),
		), nil
	}
	if len(rest) != 2 {
		return applied{}, invalidPath(event.Path)
	}
	id := rest[0]
	switch rest[1] {
	case "remove":
		removed, err := s.state.removeFn(id)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "uninterpreted_fn", "remove"}, removed),
			jsonAction([]string{"sketch", "model", "uninterpreted_fn", "add"}, removed),
		), nil
	case "set_name":
		name, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		updated, oldName, err := s.state.setFnName(id, name)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "uninterpreted_fn", "set_name"}, updated),
			jsonAction([]string{"sketch", "model", "uninterpreted_fn", id, "set_name"}, oldName),
		), nil
	case "set_expression":
		expression, err := aeon.UnmarshalPayload[string](event.Payload)
		if err != nil {
			return applied{}, err
		}
		updated, oldExpr, err := s.state.setFnExpression(id, expression)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "uninterpreted_fn", "set_expression"}, updated),
			jsonAction([]string{"sketch", "model", "uninterpreted_fn", id, "set_expression"}, oldExpr),
		), nil
	}
	return applied{}, invalidPath(event.Path)
}

func (s *Session) applyLayout(event aeon.Event, rest []string) (applied, error) {
	if len(rest) != 2 {
		return applied{}, invalidPath(event.Path)
	}
	layoutID := rest[0]
	switch rest[1] {
	case "update_position":
		node, err := aeon.UnmarshalPayload[sketch.LayoutNodeData](event.Payload)
		if err != nil {
			return applied{}, err
		}
		node.Layout = layoutID
		old, err := s.state.updatePosition(node)
		if err != nil {
			return applied{}, err
		}
		return reversible(
			changeEvent([]string{"sketch", "model", "layout", "update_position"}, node),
			jsonAction([]string{"sketch", "model", "layout", layoutID, "update_position"}, old),
		), nil
	}
	return applied{}, invalidPath(event.Path)
}
