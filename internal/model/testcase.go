package model

import "strings"

// Kind identifies what a test case or result node invokes.
type Kind int

const (
	// KindDecision is the default kind.
	KindDecision Kind = iota
	KindBusinessKnowledgeModel
	KindDecisionService
)

// String returns the fixture spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindBusinessKnowledgeModel:
		return "bkm"
	case KindDecisionService:
		return "decisionService"
	default:
		return "decision"
	}
}

// ParseKind converts a type attribute leniently: case and surrounding
// whitespace are ignored and anything unknown is a decision.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bkm":
		return KindBusinessKnowledgeModel
	case "decisionservice":
		return KindDecisionService
	default:
		return KindDecision
	}
}

// TestCases is the content of one fixture document.
type TestCases struct {
	// ModelName names the model-definition file the fixture targets.
	ModelName *string
	// Labels are carried through but not evaluated.
	Labels    []string
	TestCases []TestCase
}

// TestCase is a single test case with its inputs and expected results.
type TestCase struct {
	ID          *string
	Name        *string
	Kind        Kind
	Description *string
	// InvocableName, when set, overrides the result node name as the
	// invocable target for every result node of the test case.
	InvocableName *string
	InputNodes    []InputNode
	ResultNodes   []ResultNode
}

// InputNode is a named input value. Value is nil when the fixture gives none.
type InputNode struct {
	Name  string
	Value Value
}

// ResultNode is one asserted result of a test case.
type ResultNode struct {
	Name        string
	ErrorResult bool
	Kind        Kind
	Cast        *string
	Expected    Value
	// Computed is only filled by external tooling.
	Computed Value
}

// TestCount returns the number of individual tests (result nodes) in the fixture.
func (tc *TestCases) TestCount() int {
	n := 0
	for _, c := range tc.TestCases {
		n += len(c.ResultNodes)
	}
	return n
}
