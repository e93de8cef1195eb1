package identity

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned when metadata is requested for a file that was
// never resolved.
var ErrUnknownModel = errors.New("model definition not resolved")

// DefinitionError reports a model-definition file whose metadata cannot be derived.
type DefinitionError struct {
	// File is the model-definition file path.
	File string

	// Reason is a human-readable description.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.File, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// IsDefinitionError returns true if err is or wraps a *DefinitionError.
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}
