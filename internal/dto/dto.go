package dto

import (
	"fmt"
	"strings"
)

// ValueDTO is the wire form of a value. At most one branch is set.
type ValueDTO struct {
	Simple     *SimpleDTO      `json:"simple,omitempty"`
	Components *[]ComponentDTO `json:"components,omitempty"`
	List       *ListDTO        `json:"list,omitempty"`
}

// IsEmpty reports whether no branch is set ("no value").
func (v ValueDTO) IsEmpty() bool {
	return v.Simple == nil && v.Components == nil && v.List == nil
}

// SimpleDTO is the wire form of a simple value.
type SimpleDTO struct {
	Type *string `json:"type"`
	Text *string `json:"text"`
	Nil  bool    `json:"isNil"`
}

// ComponentDTO is the wire form of a named component.
type ComponentDTO struct {
	Name  *string   `json:"name"`
	Value *ValueDTO `json:"value"`
	Nil   bool      `json:"isNil"`
}

// ListDTO is the wire form of a list.
type ListDTO struct {
	Items []ValueDTO `json:"items"`
	Nil   bool       `json:"isNil"`
}

// InputNodeDTO is one named input of an evaluation request.
type InputNodeDTO struct {
	Name  string    `json:"name"`
	Value *ValueDTO `json:"value,omitempty"`
}

// EvaluateRequest is the body posted to the evaluation service.
type EvaluateRequest struct {
	// Invocable is the path of the invocable: "[workspace/]rdnn/name".
	Invocable string         `json:"invocable"`
	Input     []InputNodeDTO `json:"input"`
}

// ErrorDTO is one error reported by the evaluation service.
type ErrorDTO struct {
	Detail string `json:"detail"`
}

// OptionalValueDTO wraps the evaluated value in a response.
type OptionalValueDTO struct {
	Value *ValueDTO `json:"value"`
}

// ResultDTO is the response envelope of the evaluation service.
type ResultDTO struct {
	Data   *OptionalValueDTO `json:"data"`
	Errors []ErrorDTO        `json:"errors"`
}

// ErrorDetails joins the reported error details with ", ".
func (r *ResultDTO) ErrorDetails() string {
	details := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		details[i] = e.Detail
	}
	return strings.Join(details, ", ")
}

// String renders the envelope for diagnostics of unexpected responses.
func (r *ResultDTO) String() string {
	if r.Data == nil {
		return fmt.Sprintf("ResultDTO { data: None, errors: %d }", len(r.Errors))
	}
	return fmt.Sprintf("ResultDTO { data: Some(value: %t), errors: %d }", r.Data.Value != nil, len(r.Errors))
}
