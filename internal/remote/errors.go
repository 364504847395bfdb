package remote

import (
	"errors"
	"fmt"
)

// Error represents a failure to provision a connection.
//
// Connection errors are surfaced to the caller as-is; this layer never
// retries. Retry policy, if any, belongs to the evaluation layer.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Address is the host:port that was dialed, if any.
	Address string

	// TraversalSource is the alias the connection was to be bound to.
	TraversalSource string

	// Err is the underlying transport error.
	Err error
}

// ErrorCode categorizes provisioning errors.
type ErrorCode string

const (
	// ErrCodeConnectionFailure indicates the client could not be opened or
	// bound to its traversal source.
	ErrCodeConnectionFailure ErrorCode = "CONNECTION_FAILURE"

	// ErrCodeInvalidAlias indicates an empty traversal source alias.
	ErrCodeInvalidAlias ErrorCode = "INVALID_ALIAS"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Address != "" && e.TraversalSource != "" {
		msg = fmt.Sprintf("%s: %s (address=%s, source=%s)", e.Code, e.Message, e.Address, e.TraversalSource)
	} else if e.Address != "" {
		msg = fmt.Sprintf("%s: %s (address=%s)", e.Code, e.Message, e.Address)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConnectionFailure returns true if the error is a connection failure.
// Uses errors.As to handle wrapped errors.
func IsConnectionFailure(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeConnectionFailure
	}
	return false
}

// IsInvalidAlias returns true if the error reports an unusable alias.
func IsInvalidAlias(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidAlias
	}
	return false
}

func newConnectionError(stage, address, source string, err error) *Error {
	return &Error{
		Code:            ErrCodeConnectionFailure,
		Message:         stage + " failed",
		Address:         address,
		TraversalSource: source,
		Err:             err,
	}
}
