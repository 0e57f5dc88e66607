package usecase

import "fmt"

type ErrorCode string

const (
	// ErrorInvalidInput marks requests the caller can fix: empty or oversized
	// questions and unrecognized tenant hosts.
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorExhausted marks requests where every credential and model
	// combination failed to produce an answer.
	ErrorExhausted ErrorCode = "EXHAUSTED"
	// ErrorInternal marks unexpected failures inside the service.
	ErrorInternal ErrorCode = "INTERNAL_ERROR"
)

// Error carries a machine-readable code and reason alongside the wrapped
// cause. Handlers map the code to a transport status.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
	}
	return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}
