package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/tckrunner/internal/model"
)

// XSINamespace is the XML Schema instance namespace carrying type and nil.
const XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Element names.
const (
	nodeComponent   = "component"
	nodeComputed    = "computed"
	nodeDescription = "description"
	nodeExpected    = "expected"
	nodeInputNode   = "inputNode"
	nodeItem        = "item"
	nodeLabels      = "labels"
	nodeLabel       = "label"
	nodeList        = "list"
	nodeModelName   = "modelName"
	nodeResultNode  = "resultNode"
	nodeTestCase    = "testCase"
	nodeTestCases   = "testCases"
	nodeValue       = "value"
)

// Attribute names.
const (
	attrCast          = "cast"
	attrErrorResult   = "errorResult"
	attrID            = "id"
	attrInvocableName = "invocableName"
	attrName          = "name"
	attrNil           = "nil"
	attrType          = "type"
)

// ParseFile reads and parses a fixture file.
// Parse errors are annotated with the file path.
func ParseFile(path string) (*model.TestCases, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	defer f.Close()

	tc, err := Parse(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
			return nil, pe
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tc, nil
}

// Parse parses a fixture document. The root element must be <testCases>.
func Parse(r io.Reader) (*model.TestCases, error) {
	root, err := readDocument(r)
	if err != nil {
		return nil, err
	}
	if root.name.Local != nodeTestCases {
		return nil, &ParseError{Kind: ErrKindRoot, Element: nodeTestCases}
	}
	return parseRoot(root)
}

func parseRoot(el *element) (*model.TestCases, error) {
	modelName, err := optionalChildRequiredContent(el, nodeModelName)
	if err != nil {
		return nil, err
	}
	labels, err := parseLabels(el)
	if err != nil {
		return nil, err
	}
	testCases, err := parseTestCases(el)
	if err != nil {
		return nil, err
	}
	return &model.TestCases{
		ModelName: modelName,
		Labels:    labels,
		TestCases: testCases,
	}, nil
}

func parseLabels(el *element) ([]string, error) {
	labels := []string{}
	labelsNode := el.child(nodeLabels)
	if labelsNode == nil {
		return labels, nil
	}
	for _, labelNode := range labelsNode.childrenNamed(nodeLabel) {
		text, err := requiredContent(labelNode)
		if err != nil {
			return nil, err
		}
		labels = append(labels, text)
	}
	return labels, nil
}

func parseTestCases(el *element) ([]model.TestCase, error) {
	testCases := []model.TestCase{}
	for _, tcNode := range el.childrenNamed(nodeTestCase) {
		description, err := optionalChildRequiredContent(tcNode, nodeDescription)
		if err != nil {
			return nil, err
		}
		inputs, err := parseInputNodes(tcNode)
		if err != nil {
			return nil, err
		}
		results, err := parseResultNodes(tcNode)
		if err != nil {
			return nil, err
		}
		testCases = append(testCases, model.TestCase{
			ID:            tcNode.attr(attrID),
			Name:          tcNode.attr(attrName),
			Kind:          testCaseKind(tcNode),
			Description:   description,
			InvocableName: tcNode.attr(attrInvocableName),
			InputNodes:    inputs,
			ResultNodes:   results,
		})
	}
	return testCases, nil
}

// testCaseKind reads the type attribute of a test case. Only the exact
// spellings "bkm" and "decisionService" are recognised here; result nodes
// use the lenient model.ParseKind instead.
func testCaseKind(el *element) model.Kind {
	typ := el.attr(attrType)
	if typ == nil {
		return model.KindDecision
	}
	switch *typ {
	case "bkm":
		return model.KindBusinessKnowledgeModel
	case "decisionService":
		return model.KindDecisionService
	default:
		return model.KindDecision
	}
}

func parseInputNodes(el *element) ([]model.InputNode, error) {
	inputs := []model.InputNode{}
	for _, n := range el.childrenNamed(nodeInputNode) {
		name, err := requiredAttribute(n, attrName)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, model.InputNode{
			Name:  name,
			Value: parseValue(n),
		})
	}
	return inputs, nil
}

func parseResultNodes(el *element) ([]model.ResultNode, error) {
	results := []model.ResultNode{}
	for _, n := range el.childrenNamed(nodeResultNode) {
		name, err := requiredAttribute(n, attrName)
		if err != nil {
			return nil, err
		}
		kind := model.KindDecision
		if typ := n.attr(attrType); typ != nil {
			kind = model.ParseKind(*typ)
		}
		errorResult := n.attr(attrErrorResult)
		results = append(results, model.ResultNode{
			Name:        name,
			ErrorResult: errorResult != nil && *errorResult == "true",
			Kind:        kind,
			Cast:        n.attr(attrCast),
			Expected:    parseChildValue(n, nodeExpected),
			Computed:    parseChildValue(n, nodeComputed),
		})
	}
	return results, nil
}

// parseValue probes el for a simple value, then components, then a list.
// Returns nil when none of the shapes is present.
func parseValue(el *element) model.Value {
	if s, ok := parseSimple(el); ok {
		return s
	}
	if c, ok := parseComponents(el); ok {
		return c
	}
	if l, ok := parseList(el); ok {
		return l
	}
	return nil
}

func parseChildValue(el *element, childName string) model.Value {
	child := el.child(childName)
	if child == nil {
		return nil
	}
	return parseValue(child)
}

func parseSimple(el *element) (model.Simple, bool) {
	valueNode := el.child(nodeValue)
	if valueNode == nil {
		return model.Simple{}, false
	}
	s := model.Simple{
		Type: valueNode.attrNS(XSINamespace, attrType),
		Text: valueNode.text,
		Nil:  nilAttribute(valueNode),
	}
	// A typed, non-nil value without text is an empty string, not an absent one.
	if s.Type != nil && s.Text == nil && !s.Nil {
		s.Text = model.Str("")
	}
	return s, true
}

func parseComponents(el *element) (model.Components, bool) {
	var components model.Components
	for _, n := range el.childrenNamed(nodeComponent) {
		components = append(components, model.Component{
			Name:  n.attr(attrName),
			Value: parseValue(n),
			Nil:   nilAttribute(n),
		})
	}
	if len(components) == 0 {
		return nil, false
	}
	model.SortComponents(components)
	return components, true
}

func parseList(el *element) (model.List, bool) {
	listNode := el.child(nodeList)
	if listNode == nil {
		return model.List{}, false
	}
	if nilAttribute(listNode) {
		return model.NilList(), true
	}
	items := []model.Value{}
	for _, itemNode := range listNode.childrenNamed(nodeItem) {
		if v := parseValue(itemNode); v != nil {
			items = append(items, v)
		}
	}
	return model.List{Items: items, Nil: false}, true
}

// nilAttribute reports whether xsi:nil is exactly "true".
func nilAttribute(el *element) bool {
	v := el.attrNS(XSINamespace, attrNil)
	return v != nil && *v == "true"
}

func requiredAttribute(el *element, name string) (string, error) {
	v := el.attr(name)
	if v == nil {
		return "", missingAttribute(el, name)
	}
	return *v, nil
}

func requiredContent(el *element) (string, error) {
	if el.text == nil {
		return "", missingContent(el)
	}
	return *el.text, nil
}

// optionalChildRequiredContent returns nil when the child is absent, and an
// error when it is present without text content.
func optionalChildRequiredContent(el *element, childName string) (*string, error) {
	child := el.child(childName)
	if child == nil {
		return nil, nil
	}
	text, err := requiredContent(child)
	if err != nil {
		return nil, err
	}
	return &text, nil
}
