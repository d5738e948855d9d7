// Package errors provides standardized error types and helpers for the BibleRef codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrClosed indicates an operation on a closed handle
	ErrClosed = errors.New("closed")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
)

// UnknownTranslationError indicates a translation code with no configured
// backing database file.
type UnknownTranslationError struct {
	Code string // Translation code as requested (e.g., "kjv")
	Err  error  // Underlying error, if any
}

func (e *UnknownTranslationError) Error() string {
	return fmt.Sprintf("unknown translation: %s", e.Code)
}

func (e *UnknownTranslationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// SchemaError indicates that a required column could not be identified
// in a verse table during schema introspection.
type SchemaError struct {
	Table  string // Table that was introspected
	Column string // Logical column that could not be resolved (e.g., "verse")
	Err    error  // Underlying error, if any
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema introspection of %s: cannot identify %q column", e.Table, e.Column)
	}
	return fmt.Sprintf("schema introspection of %s failed", e.Table)
}

func (e *SchemaError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "verse", "plan", "lexicon entry")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Helper functions for creating common errors

// NewUnknownTranslation creates an UnknownTranslationError
func NewUnknownTranslation(code string) *UnknownTranslationError {
	return &UnknownTranslationError{Code: code}
}

// NewSchema creates a SchemaError
func NewSchema(table, column string) *SchemaError {
	return &SchemaError{Table: table, Column: column}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
