package fixture

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tckrunner/internal/model"
)

const header = `<testCases xmlns="http://www.omg.org/spec/DMN/20160719/testcase" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`

// parseExpected parses a single test case with one result node whose
// <expected> element holds body, and returns the expected value.
func parseExpected(t *testing.T, body string) model.Value {
	t.Helper()
	doc := header + `<testCase id="1"><resultNode name="r"><expected>` + body + `</expected></resultNode></testCase></testCases>`
	tc, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tc.TestCases, 1)
	require.Len(t, tc.TestCases[0].ResultNodes, 1)
	return tc.TestCases[0].ResultNodes[0].Expected
}

func TestParseFile(t *testing.T) {
	tc, err := ParseFile(filepath.Join("testdata", "0001-input-data-string-test-01.xml"))
	require.NoError(t, err)

	require.NotNil(t, tc.ModelName)
	assert.Equal(t, "0001-input-data-string.dmn", *tc.ModelName)
	assert.Equal(t, []string{"Compliance Level 2", "Data Type: string"}, tc.Labels)
	require.Len(t, tc.TestCases, 2)

	first := tc.TestCases[0]
	assert.Equal(t, "001", *first.ID)
	assert.Nil(t, first.Name)
	assert.Equal(t, model.KindDecision, first.Kind)
	assert.Equal(t, "Testing input data of type string", *first.Description)
	assert.Nil(t, first.InvocableName)
	require.Len(t, first.InputNodes, 1)
	assert.Equal(t, "Full Name", first.InputNodes[0].Name)
	assert.Equal(t, model.NewSimple("xsd:string", "John Doe"), first.InputNodes[0].Value)
	require.Len(t, first.ResultNodes, 1)
	assert.Equal(t, "Greeting Message", first.ResultNodes[0].Name)
	assert.Equal(t, model.NewSimple("xsd:string", "Hello John Doe"), first.ResultNodes[0].Expected)
	assert.Nil(t, first.ResultNodes[0].Computed)

	second := tc.TestCases[1]
	assert.Equal(t, model.KindDecisionService, second.Kind)
	assert.Equal(t, "Greeting", *second.InvocableName)
	require.Len(t, second.ResultNodes, 2)
	farewell := second.ResultNodes[1]
	assert.True(t, farewell.ErrorResult)
	assert.Equal(t, "string", *farewell.Cast)
	assert.Equal(t, model.Simple{Nil: true}, farewell.Expected)

	assert.Equal(t, 3, tc.TestCount())
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read fixture file")
}

func TestParse_WrongRoot(t *testing.T) {
	_, err := Parse(strings.NewReader(`<definitions/>`))
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrKindRoot, pe.Kind)
	assert.Equal(t, "expected mandatory node 'testCases'", err.Error())
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := Parse(strings.NewReader(`<testCases><testCase></testCases>`))
	require.Error(t, err)
	assert.False(t, IsParseError(err))
	assert.Contains(t, err.Error(), "malformed fixture document")
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := Parse(strings.NewReader(``))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no root element")
}

func TestParse_MandatoryFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind ParseErrorKind
		msg  string
	}{
		{
			name: "empty model name",
			body: `<modelName/>`,
			kind: ErrKindContent,
			msg:  "no mandatory text content in node 'modelName'",
		},
		{
			name: "empty label",
			body: `<labels><label></label></labels>`,
			kind: ErrKindContent,
			msg:  "no mandatory text content in node 'label'",
		},
		{
			name: "empty description",
			body: `<testCase><description/></testCase>`,
			kind: ErrKindContent,
			msg:  "no mandatory text content in node 'description'",
		},
		{
			name: "input node without name",
			body: `<testCase><inputNode/></testCase>`,
			kind: ErrKindAttribute,
			msg:  "no mandatory attribute 'name' in node 'inputNode'",
		},
		{
			name: "result node without name",
			body: `<testCase><resultNode/></testCase>`,
			kind: ErrKindAttribute,
			msg:  "no mandatory attribute 'name' in node 'resultNode'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(header + tt.body + `</testCases>`))
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestParse_OptionalRootContent(t *testing.T) {
	tc, err := Parse(strings.NewReader(header + `</testCases>`))
	require.NoError(t, err)
	assert.Nil(t, tc.ModelName)
	assert.Empty(t, tc.Labels)
	assert.Empty(t, tc.TestCases)
}

func TestParse_TestCaseKindIsExact(t *testing.T) {
	doc := header +
		`<testCase type="bkm"/>` +
		`<testCase type="BKM"/>` +
		`<testCase type="decisionservice"/>` +
		`<testCase/>` +
		`</testCases>`
	tc, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tc.TestCases, 4)
	assert.Equal(t, model.KindBusinessKnowledgeModel, tc.TestCases[0].Kind)
	assert.Equal(t, model.KindDecision, tc.TestCases[1].Kind)
	assert.Equal(t, model.KindDecision, tc.TestCases[2].Kind)
	assert.Equal(t, model.KindDecision, tc.TestCases[3].Kind)
}

func TestParse_ResultNodeKindIsLenient(t *testing.T) {
	doc := header + `<testCase>` +
		`<resultNode name="a" type=" BKM "/>` +
		`<resultNode name="b" type="DecisionService"/>` +
		`<resultNode name="c"/>` +
		`<resultNode name="d" errorResult="TRUE"/>` +
		`</testCase></testCases>`
	tc, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	nodes := tc.TestCases[0].ResultNodes
	require.Len(t, nodes, 4)
	assert.Equal(t, model.KindBusinessKnowledgeModel, nodes[0].Kind)
	assert.Equal(t, model.KindDecisionService, nodes[1].Kind)
	assert.Equal(t, model.KindDecision, nodes[2].Kind)
	assert.False(t, nodes[3].ErrorResult)
	assert.Nil(t, nodes[3].Expected)
}

func TestParseSimple(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.Simple
	}{
		{
			name: "typed text",
			body: `<value xsi:type="xsd:decimal">1.5</value>`,
			want: model.NewSimple("xsd:decimal", "1.5"),
		},
		{
			name: "typed without text is empty string",
			body: `<value xsi:type="xsd:string"/>`,
			want: model.NewSimple("xsd:string", ""),
		},
		{
			name: "typed nil keeps absent text",
			body: `<value xsi:type="xsd:string" xsi:nil="true"/>`,
			want: model.Simple{Type: model.Str("xsd:string"), Nil: true},
		},
		{
			name: "untyped without text",
			body: `<value/>`,
			want: model.Simple{},
		},
		{
			name: "untyped text",
			body: `<value>abc</value>`,
			want: model.Simple{Text: model.Str("abc")},
		},
		{
			name: "nil must be literal true",
			body: `<value xsi:nil="TRUE">x</value>`,
			want: model.Simple{Text: model.Str("x")},
		},
		{
			name: "unqualified nil is ignored",
			body: `<value nil="true">x</value>`,
			want: model.Simple{Text: model.Str("x")},
		},
		{
			name: "whitespace text is kept",
			body: `<value xsi:type="xsd:string">  </value>`,
			want: model.NewSimple("xsd:string", "  "),
		},
		{
			name: "entities and cdata merge",
			body: `<value>a&amp;b<![CDATA[<c>]]></value>`,
			want: model.Simple{Text: model.Str("a&b<c>")},
		},
		{
			name: "leading comment hides text",
			body: `<value xsi:type="xsd:string"><!-- c -->text</value>`,
			want: model.NewSimple("xsd:string", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseExpected(t, tt.body)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseComponents_SortedByName(t *testing.T) {
	got := parseExpected(t,
		`<component name="zeta"><value xsi:type="xsd:string">z</value></component>`+
			`<component xsi:nil="true"/>`+
			`<component name="alpha"><value xsi:type="xsd:string">a</value></component>`+
			`<component name="middle"><component name="inner"><value>i</value></component></component>`)

	components, ok := got.(model.Components)
	require.True(t, ok, "expected components, got %T", got)
	require.Len(t, components, 4)
	assert.True(t, components.IsSorted())

	assert.Nil(t, components[0].Name)
	assert.True(t, components[0].Nil)
	assert.Nil(t, components[0].Value)

	assert.Equal(t, "alpha", *components[1].Name)
	assert.Equal(t, model.NewSimple("xsd:string", "a"), components[1].Value)

	assert.Equal(t, "middle", *components[2].Name)
	nested, ok := components[2].Value.(model.Components)
	require.True(t, ok)
	require.Len(t, nested, 1)
	assert.Equal(t, "inner", *nested[0].Name)

	assert.Equal(t, "zeta", *components[3].Name)
}

func TestParseList(t *testing.T) {
	t.Run("present empty list is not nil", func(t *testing.T) {
		got := parseExpected(t, `<list/>`)
		assert.Equal(t, model.List{Items: []model.Value{}, Nil: false}, got)
	})

	t.Run("nil list ignores items", func(t *testing.T) {
		got := parseExpected(t, `<list xsi:nil="true"><item><value>1</value></item></list>`)
		assert.Equal(t, model.NilList(), got)
	})

	t.Run("items keep order and empty items are skipped", func(t *testing.T) {
		got := parseExpected(t,
			`<list>`+
				`<item><value xsi:type="xsd:decimal">2</value></item>`+
				`<item/>`+
				`<item><value xsi:type="xsd:decimal">1</value></item>`+
				`<item><list><item><value>x</value></item></list></item>`+
				`</list>`)
		list, ok := got.(model.List)
		require.True(t, ok)
		assert.False(t, list.Nil)
		require.Len(t, list.Items, 3)
		assert.Equal(t, model.NewSimple("xsd:decimal", "2"), list.Items[0])
		assert.Equal(t, model.NewSimple("xsd:decimal", "1"), list.Items[1])
		inner, ok := list.Items[2].(model.List)
		require.True(t, ok)
		assert.Len(t, inner.Items, 1)
	})
}

func TestParseValue_ProbeOrder(t *testing.T) {
	t.Run("simple wins over components and list", func(t *testing.T) {
		got := parseExpected(t, `<list/><component name="a"/><value>v</value>`)
		assert.IsType(t, model.Simple{}, got)
	})

	t.Run("components win over list", func(t *testing.T) {
		got := parseExpected(t, `<list/><component name="a"/>`)
		assert.IsType(t, model.Components{}, got)
	})

	t.Run("no shape yields no value", func(t *testing.T) {
		got := parseExpected(t, ``)
		assert.Nil(t, got)
	})
}

func TestParseInputNode_WithoutValue(t *testing.T) {
	doc := header + `<testCase><inputNode name="x"/></testCase></testCases>`
	tc, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tc.TestCases[0].InputNodes, 1)
	assert.Nil(t, tc.TestCases[0].InputNodes[0].Value)
}
