package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRender    Category = "render"
	CategoryScheduler Category = "scheduler"
	CategoryProtocol  Category = "protocol"
	CategoryRemote    Category = "remote"
	CategoryConfig    Category = "config"
	CategoryFixture   Category = "fixture"
)

// ReactorError is a structured error with a registered code and hints.
type ReactorError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (render, protocol, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Component names the component involved, if any.
	Component string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ReactorError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ReactorError) Unwrap() error {
	return e.Wrapped
}

// WithComponent records the component involved.
func (e *ReactorError) WithComponent(name string) *ReactorError {
	e.Component = name
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ReactorError) WithSuggestion(s string) *ReactorError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ReactorError) WithDetail(d string) *ReactorError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ReactorError) Wrap(err error) *ReactorError {
	e.Wrapped = err
	return e
}

// New creates a ReactorError from a registered error code.
func New(code string) *ReactorError {
	template, ok := registry[code]
	if !ok {
		return &ReactorError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ReactorError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new ReactorError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ReactorError {
	return &ReactorError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ReactorError.
func FromError(err error, code string) *ReactorError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*ReactorError); ok {
		return re
	}
	return New(code).Wrap(err)
}

// FromPanic converts a recovered panic value into a ReactorError.
func FromPanic(v any, code string) *ReactorError {
	if err, ok := v.(error); ok {
		return FromError(err, code)
	}
	return New(code).Wrap(fmt.Errorf("panic: %v", v))
}
