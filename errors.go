package marks

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on an engine that has been closed.
	ErrClosed = errors.New("marks: engine closed")

	// ErrDatatype reports a datum that is not assignable to the mark's declared datatype.
	ErrDatatype = errors.New("marks: datum does not match datatype")

	// ErrInvalidValue reports a property value outside its registered set.
	ErrInvalidValue = errors.New("marks: invalid property value")

	// ErrUnknownProperty reports a property name no evaluator can assign.
	ErrUnknownProperty = errors.New("marks: unknown property")
)

// PropertyError describes a rejected property definition.
type PropertyError struct {
	Name  string
	Value any
	Err   error
}

func (e *PropertyError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, ErrInvalidValue) {
		return fmt.Sprintf("marks: property %s=%v: %v", e.Name, e.Value, e.Err)
	}
	return fmt.Sprintf("marks: property %s: invalid value %q", e.Name, fmt.Sprint(e.Value))
}

func (e *PropertyError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidValue
}

// checkRegistered validates v against the registered values of name, if any.
func checkRegistered(name, v string) error {
	set, ok := registered[name]
	if !ok || set[v] {
		return nil
	}
	return &PropertyError{Name: name, Value: v}
}
