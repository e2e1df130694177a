package errors

import (
	"fmt"
)

// FieldsError is the interface implemented by all fieldstore errors.
type FieldsError interface {
	error // Embed the standard error interface
	Kind() string // e.g., "Isolation", "Frozen", "Name"
	// Message returns the specific error message without the owner prefix.
	// This might be useful if the caller wants to format the error differently.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// IsolationError is returned when a non-privileged context attempts a
// write, or attempts to read a value that is not shareable across
// context boundaries.
type IsolationError struct {
	Owner string // name of the owner object involved, may be empty
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *IsolationError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("isolation violation on %s: %s", e.Owner, e.Msg)
	}
	return fmt.Sprintf("isolation violation: %s", e.Msg)
}
func (e *IsolationError) Kind() string    { return "Isolation" }
func (e *IsolationError) Message() string { return e.Msg }
func (e *IsolationError) Unwrap() error   { return e.Cause }
func (e *IsolationError) CausedBy(cause error) *IsolationError {
	e.Cause = cause
	return e
}

// FrozenError is returned when a write is attempted on an owner marked
// immutable. The storage is left unchanged.
type FrozenError struct {
	Owner string
	Msg   string
	Cause error
}

func (e *FrozenError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("frozen violation on %s: %s", e.Owner, e.Msg)
	}
	return fmt.Sprintf("frozen violation: %s", e.Msg)
}
func (e *FrozenError) Kind() string    { return "Frozen" }
func (e *FrozenError) Message() string { return e.Msg }
func (e *FrozenError) Unwrap() error   { return e.Cause }
func (e *FrozenError) CausedBy(cause error) *FrozenError {
	e.Cause = cause
	return e
}

// NameError is returned when an attribute name fails validation on
// first definition. Lookups of invalid names simply miss.
type NameError struct {
	Name  string
	Msg   string
	Cause error
}

func (e *NameError) Error() string {
	return fmt.Sprintf("invalid attribute name %q: %s", e.Name, e.Msg)
}
func (e *NameError) Kind() string    { return "Name" }
func (e *NameError) Message() string { return e.Msg }
func (e *NameError) Unwrap() error   { return e.Cause }
func (e *NameError) CausedBy(cause error) *NameError {
	e.Cause = cause
	return e
}

// --- Helper constructors ---

func NewIsolation(owner, msg string) *IsolationError {
	return &IsolationError{Owner: owner, Msg: msg}
}

func NewFrozen(owner, msg string) *FrozenError {
	return &FrozenError{Owner: owner, Msg: msg}
}

func NewName(name, msg string) *NameError {
	return &NameError{Name: name, Msg: msg}
}
