package model

import (
	"slices"
	"strings"
)

// Value is a sealed interface over the three shapes a decision value can take.
// Only Simple, Components and List implement it.
type Value interface {
	isValue() // Sealed - only these types implement it
}

// Simple is a single typed value, like <value xsi:type="xsd:string">OK</value>.
type Simple struct {
	// Type is the namespace-prefixed type name (xsi:type), if any.
	Type *string
	// Text is the textual payload, if any.
	Text *string
	// Nil is set when the element carries xsi:nil="true".
	Nil bool
}

func (Simple) isValue() {}

// Component is one named entry of a Components value.
type Component struct {
	Name  *string
	Value Value
	Nil   bool
}

// Components is an ordered collection of named sub-values.
// Use SortComponents after construction to restore the name ordering.
type Components []Component

func (Components) isValue() {}

// List is a sequence of values. A nil list has no items.
type List struct {
	Items []Value
	Nil   bool
}

func (List) isValue() {}

// NilList returns the list used for absent or xsi:nil="true" lists.
func NilList() List {
	return List{Items: []Value{}, Nil: true}
}

// NewSimple builds a non-nil simple value with both type and text set.
func NewSimple(typ, text string) Simple {
	return Simple{Type: &typ, Text: &text}
}

// Str returns a pointer to s. Handy for optional fields.
func Str(s string) *string {
	return &s
}

// SortComponents sorts components ascending by name.
// Components without a name sort before all named ones.
// The sort is stable so components sharing a name keep document order.
func SortComponents(c Components) {
	slices.SortStableFunc(c, func(a, b Component) int {
		return CompareNames(a.Name, b.Name)
	})
}

// CompareNames orders optional names with nil strictly least.
func CompareNames(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return strings.Compare(*a, *b)
	}
}

// IsSorted reports whether components are in name order.
func (c Components) IsSorted() bool {
	return slices.IsSortedFunc(c, func(a, b Component) int {
		return CompareNames(a.Name, b.Name)
	})
}
