package usecase

import "fmt"

type ErrorCode string

const (
	// ErrorInvalidInput marks requests the service refuses to process.
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorStoreFailure marks failed writes or reads on the substrate. The
	// triggering call reports failure to its caller; the process survives.
	ErrorStoreFailure ErrorCode = "STORE_FAILURE"
	// ErrorInternal marks everything else.
	ErrorInternal ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
