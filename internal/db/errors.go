package db

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every FormatError
	ErrFormat = errors.New("invalid table specifier")

	// ErrInternalConsistency is matched by every InternalConsistencyError
	ErrInternalConsistency = errors.New("unexpected catalog state")
)

// FormatError reports a table specifier that does not parse
type FormatError struct {
	Spec string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrFormat, e.Spec)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// InternalConsistencyError reports catalog data that violates an assumption
// that valid catalogs always satisfy
type InternalConsistencyError struct {
	Table      string
	Constraint string
	Detail     string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("%s: constraint %s on table %s: %s", ErrInternalConsistency, e.Constraint, e.Table, e.Detail)
}

func (e *InternalConsistencyError) Unwrap() error {
	return ErrInternalConsistency
}
