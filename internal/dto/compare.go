package dto

import (
	"github.com/google/go-cmp/cmp"

	"github.com/roach88/tckrunner/internal/model"
)

// Equal reports whether computed matches expected.
// Both values are compared in their wire form. Two absent values are equal.
func Equal(expected, computed model.Value) bool {
	return EqualDTO(FromValue(expected), FromValue(computed))
}

// EqualDTO reports whether two wire values are structurally equal.
// Every branch is compared, so a value carrying an extra branch is not equal
// to one without it.
func EqualDTO(a, b *ValueDTO) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return equalBranch(a.Simple, b.Simple, equalSimple) &&
		equalBranch(a.Components, b.Components, func(x, y *[]ComponentDTO) bool {
			return equalComponents(*x, *y)
		}) &&
		equalBranch(a.List, b.List, equalList)
}

// equalBranch treats two absent branches as equal and one absent branch as a difference.
func equalBranch[T any](a, b *T, eq func(a, b *T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return eq(a, b)
}

func equalSimple(a, b *SimpleDTO) bool {
	return equalString(a.Type, b.Type) && equalString(a.Text, b.Text) && a.Nil == b.Nil
}

func equalComponents(a, b []ComponentDTO) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalString(a[i].Name, b[i].Name) || a[i].Nil != b[i].Nil {
			return false
		}
		if !EqualDTO(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func equalList(a, b *ListDTO) bool {
	if a.Nil != b.Nil {
		return false
	}
	if a.Nil {
		return true
	}
	if len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if !EqualDTO(&a.Items[i], &b.Items[i]) {
			return false
		}
	}
	return true
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Diff returns a human-readable report of the differences between expected
// and computed, or "" when they are equal. Used for verbose mismatch output.
func Diff(expected, computed model.Value) string {
	if Equal(expected, computed) {
		return ""
	}
	return cmp.Diff(FromValue(expected), FromValue(computed))
}
