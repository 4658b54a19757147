package practice

import (
	"errors"
	"fmt"
)

var (
	// ErrNoWords is returned when no word is eligible for practice
	ErrNoWords = errors.New("no words available")

	// ErrValidation is returned for empty or invalid input. The session is kept.
	ErrValidation = errors.New("invalid input")

	// ErrNoSession is returned when a conversation has no active session
	ErrNoSession = errors.New("no active session")
)

// StoreError wraps a persistence failure with the operation that failed
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
