package core

import (
	"errors"
	"fmt"
)

// Request-level error kinds. These surface to the caller as rejected
// requests. Translation and execution failures are deliberately NOT here:
// they are expected domain outcomes, captured into the persisted Query
// record instead of being raised.
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateName   = errors.New("a connection with this name already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyExists   = errors.New("already exists")
)

// ExecutionError is a structured failure from an execution driver.
type ExecutionError struct {
	Reason   string
	SQLState string // vendor error code when the driver exposes one
	Timeout  bool   // the bounded wait expired before the database answered
}

func (e *ExecutionError) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("%s (sqlstate %s)", e.Reason, e.SQLState)
	}
	return e.Reason
}
