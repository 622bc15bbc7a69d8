package session

import (
	"errors"
	"fmt"
)

// PlanError is a planning-session failure with a stable code for
// programmatic handling and CLI output.
type PlanError struct {
	// Code identifies the error category.
	Code ErrorCode

	// TaskID is the affected task, or 0 when the error is session-wide.
	TaskID int

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes planning-session errors.
type ErrorCode string

const (
	// ErrCodeSessionClosed indicates mutation of a submitted or
	// cancelled session.
	ErrCodeSessionClosed ErrorCode = "SESSION_CLOSED"

	// ErrCodeNotInitialized indicates use of a session before Init.
	ErrCodeNotInitialized ErrorCode = "NOT_INITIALIZED"

	// ErrCodeUnknownTask indicates a task id not present in the
	// directory for this session.
	ErrCodeUnknownTask ErrorCode = "UNKNOWN_TASK"

	// ErrCodeMissingDate indicates a checked task without a due date at
	// submission time.
	ErrCodeMissingDate ErrorCode = "MISSING_DATE"

	// ErrCodeEstimateInvalid indicates an estimate formula that failed
	// to evaluate.
	ErrCodeEstimateInvalid ErrorCode = "ESTIMATE_INVALID"

	// ErrCodeSaveFailed indicates the persistence collaborator rejected
	// a task-date save.
	ErrCodeSaveFailed ErrorCode = "SAVE_FAILED"
)

// Error implements the error interface.
func (e *PlanError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.TaskID != 0 {
		return fmt.Sprintf("%s: %s (task=%d)", e.Code, msg, e.TaskID)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a *PlanError carrying the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
