package fixture

import (
	"errors"
	"fmt"
)

// ParseErrorKind categorizes fixture parse failures.
type ParseErrorKind string

const (
	// ErrKindRoot indicates the document root is not <testCases>.
	ErrKindRoot ParseErrorKind = "MISSING_ROOT"

	// ErrKindAttribute indicates a mandatory attribute is absent.
	ErrKindAttribute ParseErrorKind = "MISSING_ATTRIBUTE"

	// ErrKindContent indicates a mandatory element has no text content.
	ErrKindContent ParseErrorKind = "MISSING_CONTENT"
)

// ParseError reports a missing mandatory element, attribute or text content.
type ParseError struct {
	Kind ParseErrorKind

	// Element is the local name of the offending element.
	Element string

	// Attribute is set for ErrKindAttribute.
	Attribute string

	// File is the fixture path, when known.
	File string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var msg string
	switch e.Kind {
	case ErrKindRoot:
		msg = fmt.Sprintf("expected mandatory node '%s'", e.Element)
	case ErrKindAttribute:
		msg = fmt.Sprintf("no mandatory attribute '%s' in node '%s'", e.Attribute, e.Element)
	case ErrKindContent:
		msg = fmt.Sprintf("no mandatory text content in node '%s'", e.Element)
	default:
		msg = fmt.Sprintf("invalid node '%s'", e.Element)
	}
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func missingAttribute(el *element, attr string) *ParseError {
	return &ParseError{Kind: ErrKindAttribute, Element: el.name.Local, Attribute: attr}
}

func missingContent(el *element) *ParseError {
	return &ParseError{Kind: ErrKindContent, Element: el.name.Local}
}
