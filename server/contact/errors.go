package contact

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField     = errors.New("missing required field")
	ErrStoreFailure     = errors.New("message store failure")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// MissingFieldError lists every required form field that was absent or blank.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingField, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// StoreError wraps whatever the store returned while saving a message.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}
