package document

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is the root of every shape violation on a Record.
	ErrInvalidRecord = errors.New("document: invalid record")
	// ErrMissingField marks a required field that is absent or null.
	ErrMissingField = fmt.Errorf("%w: missing field", ErrInvalidRecord)
	// ErrMalformedField marks a field whose value has the wrong shape.
	ErrMalformedField = fmt.Errorf("%w: malformed field", ErrInvalidRecord)
	// ErrUnknownKind is returned by ParseKind.
	ErrUnknownKind = errors.New("document: unknown kind")
)

// FieldError names the record field that broke the contract.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("document: field %q is invalid", e.Field)
	}
	return fmt.Sprintf("document: field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
