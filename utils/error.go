package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

var ErrPermissionDenied = errors.New("permission denied")

// ValidationError is a field that failed a local rule. Nothing was sent to the store.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field string, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StaleReferenceError means the record was deleted by someone else while it was being edited.
type StaleReferenceError struct {
	Entity string `json:"entity"`
	Id     int    `json:"id"`
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("%s %d no longer exists", e.Entity, e.Id)
}

func (e *StaleReferenceError) Unwrap() error {
	return ErrorRecordNotFound
}

// ReferenceError blocks a delete while other rows still point at the record.
type ReferenceError struct {
	Entity    string `json:"entity"`
	Id        int    `json:"id"`
	BlockedBy string `json:"blocked_by"`
}

func (e *ReferenceError) Error() string {
	if e.BlockedBy == "" {
		return fmt.Sprintf("cannot delete %s: it is still referenced", e.Entity)
	}
	return fmt.Sprintf("cannot delete %s: used by %s", e.Entity, e.BlockedBy)
}

type UniqueError struct {
	Field string `json:"field"`
}

func (e *UniqueError) Error() string {
	return "duplicate " + e.Field
}

// ConnectionError wraps any failure of the store itself. Callers are expected to drop
// the current session and send the user back to reconnect.
type ConnectionError struct {
	Err       error
	Reconnect bool
}

func (e *ConnectionError) Error() string {
	return "store unavailable: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStale(err error) bool {
	var se *StaleReferenceError
	return errors.As(err, &se)
}
