// Package model defines the values and test-case structures read from
// conformance fixtures.
//
// This package contains type definitions only. The fixture parser, the wire
// conversion layer and the comparison engine all import model; model imports
// nothing internal.
//
// Key constraints:
//   - Value is sealed: only Simple, Components and List implement it
//   - An absent value is a nil Value, never an empty variant
//   - Components are kept sorted by name (missing names first) once parsed
package model
