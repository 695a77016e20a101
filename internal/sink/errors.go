package sink

import (
	"errors"
	"fmt"
)

// Code classifies a sink failure.
type Code string

const (
	CodeEndpointUnreachable Code = "E_ENDPOINT_UNREACHABLE"
	CodeAuthInvalid         Code = "E_AUTH_INVALID"
	CodeBucketNotFound      Code = "E_BUCKET_NOT_FOUND"
	CodeObjectNotFound      Code = "E_OBJECT_NOT_FOUND"
	CodePermissionDenied    Code = "E_PERMISSION_DENIED"
	CodeTimeout             Code = "E_TIMEOUT"
	CodeSinkWriteFailed     Code = "E_SINK_WRITE_FAILED"
)

// Error is a coded sink failure. Retryable tells the caller whether running
// the same write again may succeed.
type Error struct {
	Code      Code
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a retryable sink failure.
func IsRetryable(err error) bool {
	var sinkErr *Error
	return errors.As(err, &sinkErr) && sinkErr.Retryable
}

func wrapError(code Code, retryable bool, err error) *Error {
	return &Error{Code: code, Retryable: retryable, Err: err}
}
