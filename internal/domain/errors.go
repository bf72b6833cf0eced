package domain

import (
	"errors"
	"fmt"
)

// Document errors
var (
	ErrParse            = errors.New("document is not valid JSON")
	ErrUnknownEnumValue = errors.New("unknown enum value")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Table errors
var (
	ErrRowIndex = errors.New("row index out of range")
)

// ParseError reports a document that could not be read as JSON. Offset is the
// byte position of the first syntax problem when known, else -1.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%v at offset %d: %v", ErrParse, e.Offset, e.Err)
	}
	return fmt.Sprintf("%v: %v", ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// UnknownEnumValueError reports an enum field whose value is not in its closed list.
type UnknownEnumValueError struct {
	Field EnumField
	Value string
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("%v: %s=%q", ErrUnknownEnumValue, e.Field, e.Value)
}

func (e *UnknownEnumValueError) Unwrap() error {
	return ErrUnknownEnumValue
}
