// Package dto defines the JSON wire form of values exchanged with the
// evaluation service, the request and response envelopes, and the comparison
// engine that judges a computed value against an expected one.
//
// # Wire Form
//
// A value is an object with exactly one of "simple", "components" or "list":
//
//	{"simple": {"type": "xsd:string", "text": "OK", "isNil": false}}
//	{"components": [{"name": "a", "value": {...}, "isNil": false}]}
//	{"list": {"items": [{...}], "isNil": false}}
//
// Absent branches are omitted, never sent as null. Inside a simple value or a
// component, absent optional fields are sent as null.
//
// # Equality
//
// Equal compares two values structurally in their wire form. Simple values
// compare type, text and nil exactly (no numeric tolerance). Components compare
// pairwise in their sorted order, lists pairwise in document order, and values
// of different shapes are never equal.
package dto
