package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tckrunner/internal/canonical"
	"github.com/roach88/tckrunner/internal/model"
)

func sampleValues() map[string]model.Value {
	return map[string]model.Value{
		"simple":       model.NewSimple("xsd:string", "Hello"),
		"simple nil":   model.Simple{Nil: true},
		"simple empty": model.Simple{Type: model.Str("xsd:string"), Text: model.Str("")},
		"components": model.Components{
			{Name: model.Str("age"), Value: model.NewSimple("xsd:decimal", "30")},
			{Name: model.Str("name"), Value: model.NewSimple("xsd:string", "Ann")},
		},
		"component without value": model.Components{{Name: model.Str("x"), Nil: true}},
		"list": model.List{Items: []model.Value{
			model.NewSimple("xsd:decimal", "1"),
			model.NewSimple("xsd:decimal", "2"),
		}},
		"empty list": model.List{Items: []model.Value{}},
		"nil list":   model.NilList(),
		"nested": model.List{Items: []model.Value{
			model.Components{{Name: model.Str("a"), Value: model.List{Items: []model.Value{}}}},
		}},
	}
}

func TestEqual_Reflexive(t *testing.T) {
	for name, v := range sampleValues() {
		t.Run(name, func(t *testing.T) {
			assert.True(t, Equal(v, v))
			assert.Empty(t, Diff(v, v))
		})
	}
}

func TestEqual_BranchExclusive(t *testing.T) {
	simple := model.NewSimple("xsd:string", "")
	list := model.List{Items: []model.Value{}}
	components := model.Components{{Name: model.Str("")}}

	assert.False(t, Equal(simple, list))
	assert.False(t, Equal(list, simple))
	assert.False(t, Equal(simple, components))
	assert.False(t, Equal(components, simple))
	assert.False(t, Equal(list, components))
}

func TestEqualDTO_ExtraBranchIsNotEqual(t *testing.T) {
	typ, text := "xsd:string", "OK"
	simple := &ValueDTO{Simple: &SimpleDTO{Type: &typ, Text: &text}}
	components := []ComponentDTO{}
	withList := &ValueDTO{Simple: simple.Simple, List: &ListDTO{Items: []ValueDTO{}}}
	withComponents := &ValueDTO{Simple: simple.Simple, Components: &components}

	assert.True(t, EqualDTO(simple, &ValueDTO{Simple: &SimpleDTO{Type: &typ, Text: &text}}))
	assert.False(t, EqualDTO(simple, withList))
	assert.False(t, EqualDTO(withList, simple))
	assert.False(t, EqualDTO(simple, withComponents))
	assert.True(t, EqualDTO(withList, withList))
}

func TestEqual_AbsentValues(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, model.NewSimple("xsd:string", "x")))
	assert.False(t, Equal(model.NewSimple("xsd:string", "x"), nil))
}

func TestEqual_NilListIsNotEmptyList(t *testing.T) {
	assert.False(t, Equal(model.NilList(), model.List{Items: []model.Value{}}))
	assert.NotEmpty(t, Diff(model.NilList(), model.List{Items: []model.Value{}}))
}

func TestEqual_ListOrderMatters(t *testing.T) {
	a := model.List{Items: []model.Value{model.NewSimple("xsd:decimal", "1"), model.NewSimple("xsd:decimal", "2")}}
	b := model.List{Items: []model.Value{model.NewSimple("xsd:decimal", "2"), model.NewSimple("xsd:decimal", "1")}}
	assert.False(t, Equal(a, b))
}

func TestEqual_ListLengthMatters(t *testing.T) {
	a := model.List{Items: []model.Value{model.NewSimple("xsd:decimal", "1")}}
	b := model.List{Items: []model.Value{model.NewSimple("xsd:decimal", "1"), model.NewSimple("xsd:decimal", "1")}}
	assert.False(t, Equal(a, b))
}

func TestEqual_SimpleExact(t *testing.T) {
	// No numeric tolerance: "1.0" and "1" differ.
	assert.False(t, Equal(model.NewSimple("xsd:decimal", "1.0"), model.NewSimple("xsd:decimal", "1")))
	assert.False(t, Equal(model.NewSimple("xsd:decimal", "1"), model.NewSimple("xsd:string", "1")))
	assert.False(t, Equal(model.Simple{Type: model.Str("xsd:string")}, model.NewSimple("xsd:string", "")))
	assert.False(t, Equal(model.Simple{Nil: true}, model.Simple{}))
}

func TestEqual_ComponentsPairwise(t *testing.T) {
	expected := model.Components{
		{Name: model.Str("a"), Value: model.NewSimple("xsd:string", "1")},
		{Name: model.Str("b"), Value: model.NewSimple("xsd:string", "2")},
	}
	same := model.Components{
		{Name: model.Str("a"), Value: model.NewSimple("xsd:string", "1")},
		{Name: model.Str("b"), Value: model.NewSimple("xsd:string", "2")},
	}
	shorter := expected[:1]
	otherValue := model.Components{
		{Name: model.Str("a"), Value: model.NewSimple("xsd:string", "1")},
		{Name: model.Str("b"), Value: model.NewSimple("xsd:string", "3")},
	}
	missingValue := model.Components{
		{Name: model.Str("a"), Value: model.NewSimple("xsd:string", "1")},
		{Name: model.Str("b")},
	}

	assert.True(t, Equal(expected, same))
	assert.False(t, Equal(expected, shorter))
	assert.False(t, Equal(expected, otherValue))
	assert.False(t, Equal(expected, missingValue))
}

func TestFromValue_RoundTrip(t *testing.T) {
	for name, v := range sampleValues() {
		t.Run(name, func(t *testing.T) {
			assert.True(t, Equal(v, ToValue(FromValue(v))))
		})
	}
}

func TestToValue_Empty(t *testing.T) {
	assert.Nil(t, ToValue(nil))
	assert.Nil(t, ToValue(&ValueDTO{}))
}

func TestToValue_EmptyComponentsIsNotAbsent(t *testing.T) {
	empty := []ComponentDTO{}
	v := ToValue(&ValueDTO{Components: &empty})
	require.NotNil(t, v)
	assert.Equal(t, model.Components{}, v)
}

func TestEvaluateRequest_WireShape(t *testing.T) {
	req := EvaluateRequest{
		Invocable: "io/dmntk/models/loan/Greeting",
		Input: FromInputNodes([]model.InputNode{
			{Name: "Full Name", Value: model.NewSimple("xsd:string", "John Doe")},
			{Name: "Missing"},
			{Name: "Nil list", Value: model.NilList()},
		}),
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"invocable": "io/dmntk/models/loan/Greeting",
		"input": [
			{"name": "Full Name", "value": {"simple": {"type": "xsd:string", "text": "John Doe", "isNil": false}}},
			{"name": "Missing"},
			{"name": "Nil list", "value": {"list": {"items": [], "isNil": true}}}
		]
	}`, string(data))
}

func TestSimpleDTO_NullFields(t *testing.T) {
	data, err := json.Marshal(FromValue(model.Simple{Nil: true}))
	require.NoError(t, err)
	assert.Equal(t, `{"simple":{"type":null,"text":null,"isNil":true}}`, string(data))
}

func TestResultDTO_Decode(t *testing.T) {
	var res ResultDTO
	err := json.Unmarshal([]byte(`{
		"data": {"value": {"components": [{"name": "a", "value": null, "isNil": true}]}}
	}`), &res)
	require.NoError(t, err)
	require.NotNil(t, res.Data)
	require.NotNil(t, res.Data.Value)

	want := model.Components{{Name: model.Str("a"), Nil: true}}
	assert.True(t, Equal(want, ToValue(res.Data.Value)))
	assert.Empty(t, res.Errors)
}

func TestResultDTO_ErrorDetails(t *testing.T) {
	res := ResultDTO{Errors: []ErrorDTO{{Detail: "first"}, {Detail: "second"}}}
	assert.Equal(t, "first, second", res.ErrorDetails())
}

func TestCanonical_Stable(t *testing.T) {
	v := model.Components{
		{Name: model.Str("b"), Value: model.List{Items: []model.Value{}}},
		{Name: nil, Value: model.Simple{Nil: true}},
	}
	data, err := canonical.Marshal(FromValue(v).Canonical())
	require.NoError(t, err)
	assert.Equal(t,
		`{"components":[{"isNil":false,"name":"b","value":{"list":{"isNil":false,"items":[]}}},`+
			`{"isNil":false,"name":null,"value":{"simple":{"isNil":true,"text":null,"type":null}}}]}`,
		string(data))
}
