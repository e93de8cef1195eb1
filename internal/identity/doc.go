// Package identity derives the addressing metadata of model definitions.
//
// For every model-definition file the runner needs three things, all keyed
// by the file name:
//
//   - the model display name (root element "name" attribute)
//   - the namespace in reverse-domain notation (RDNN), derived from the
//     root element "namespace" URL
//   - the workspace name: the file's directory relative to the discovery root
//
// A Registry holds these maps for the whole run. It is filled once per file
// before any test case referencing the file executes, and only read afterwards.
// Looking up a file that was never resolved returns ErrUnknownModel; callers
// must resolve every model definition first.
package identity
