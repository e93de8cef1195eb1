package dto

import (
	"fmt"

	"github.com/roach88/tckrunner/internal/model"
)

// FromValue converts a model value to its wire form.
// A nil value converts to nil.
func FromValue(v model.Value) *ValueDTO {
	switch val := v.(type) {
	case nil:
		return nil
	case model.Simple:
		return &ValueDTO{Simple: fromSimple(val)}
	case model.Components:
		components := make([]ComponentDTO, len(val))
		for i, c := range val {
			components[i] = ComponentDTO{
				Name:  c.Name,
				Value: FromValue(c.Value),
				Nil:   c.Nil,
			}
		}
		return &ValueDTO{Components: &components}
	case model.List:
		items := make([]ValueDTO, 0, len(val.Items))
		for _, item := range val.Items {
			if d := FromValue(item); d != nil {
				items = append(items, *d)
			}
		}
		return &ValueDTO{List: &ListDTO{Items: items, Nil: val.Nil}}
	default:
		panic(fmt.Sprintf("dto: unknown value type %T", v))
	}
}

func fromSimple(s model.Simple) *SimpleDTO {
	return &SimpleDTO{Type: s.Type, Text: s.Text, Nil: s.Nil}
}

// FromInputNodes converts the inputs of a test case to request inputs.
func FromInputNodes(nodes []model.InputNode) []InputNodeDTO {
	inputs := make([]InputNodeDTO, len(nodes))
	for i, n := range nodes {
		inputs[i] = InputNodeDTO{Name: n.Name, Value: FromValue(n.Value)}
	}
	return inputs
}

// ToValue converts a wire value back to a model value.
// Returns nil when d is nil or has no branch set.
// Branches are probed in the same order as fixtures: simple, components, list.
func ToValue(d *ValueDTO) model.Value {
	if d == nil {
		return nil
	}
	switch {
	case d.Simple != nil:
		return model.Simple{Type: d.Simple.Type, Text: d.Simple.Text, Nil: d.Simple.Nil}
	case d.Components != nil:
		components := make(model.Components, len(*d.Components))
		for i, c := range *d.Components {
			components[i] = model.Component{Name: c.Name, Value: ToValue(c.Value), Nil: c.Nil}
		}
		return components
	case d.List != nil:
		items := make([]model.Value, 0, len(d.List.Items))
		for i := range d.List.Items {
			if v := ToValue(&d.List.Items[i]); v != nil {
				items = append(items, v)
			}
		}
		return model.List{Items: items, Nil: d.List.Nil}
	default:
		return nil
	}
}

// Canonical returns d as a plain tree for canonical JSON marshaling.
// Absent branches are left out, absent optional fields are nil.
func (d *ValueDTO) Canonical() map[string]any {
	if d == nil {
		return nil
	}
	out := map[string]any{}
	if d.Simple != nil {
		out["simple"] = map[string]any{
			"type":  optional(d.Simple.Type),
			"text":  optional(d.Simple.Text),
			"isNil": d.Simple.Nil,
		}
	}
	if d.Components != nil {
		components := make([]any, len(*d.Components))
		for i, c := range *d.Components {
			var value any
			if c.Value != nil {
				value = c.Value.Canonical()
			}
			components[i] = map[string]any{
				"name":  optional(c.Name),
				"value": value,
				"isNil": c.Nil,
			}
		}
		out["components"] = components
	}
	if d.List != nil {
		items := make([]any, len(d.List.Items))
		for i := range d.List.Items {
			items[i] = d.List.Items[i].Canonical()
		}
		out["list"] = map[string]any{
			"items": items,
			"isNil": d.List.Nil,
		}
	}
	return out
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
