package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrorRecordNotFound = errors.New("record not found")

const BadFileMessage = "Bad File. Please check your CSV format and try again."

// ValidationError is bad user input, keyed by the field that caused it.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field string, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Message returns the message for field, or "" when the field is not part of the error.
func (e *ValidationError) Message(field string) string {
	return e.Fields[field]
}

// IntegrityError means a referenced record does not exist.
type IntegrityError struct {
	Field   string
	Entity  string
	Key     string
	Message string
}

func NewIntegrityError(field, entity, key, message string) *IntegrityError {
	return &IntegrityError{Field: field, Entity: entity, Key: key, Message: message}
}

func (e *IntegrityError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%s %q)", e.Field, e.Message, e.Entity, e.Key)
	}
	return fmt.Sprintf("%s: no %s with key %q", e.Field, e.Entity, e.Key)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// WithRow prefixes every field of a ValidationError with the import row number.
// Other errors are returned unchanged.
func WithRow(err error, row int) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve.Fields))
		for k, v := range ve.Fields {
			fields[fmt.Sprintf("row %d: %s", row, k)] = v
		}
		return &ValidationError{Fields: fields}
	}
	var ie *IntegrityError
	if errors.As(err, &ie) {
		copied := *ie
		copied.Field = fmt.Sprintf("row %d: %s", row, ie.Field)
		return &copied
	}
	return err
}
