package domain

import "fmt"

// OrderError is the single error type crossing the orchestrator boundary. It
// pins every failed attempt to exactly one failure class and carries the
// synthetic attempt id the caller can poll with.
type OrderError struct {
	Class     FailureClass
	AttemptID string
	Detail    string
	Err       error
}

func NewOrderError(class FailureClass, attemptID, detail string, err error) *OrderError {
	return &OrderError{Class: class, AttemptID: attemptID, Detail: detail, Err: err}
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Detail)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// ClientFault reports whether the failure was caused by the caller's input,
// as opposed to an upstream dependency.
func (e *OrderError) ClientFault() bool {
	return e.Class == FailureRule
}
