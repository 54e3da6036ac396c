package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Client-side failures of a REST call.
const (
	// ErrCodeTransport indicates the network call could not complete
	// (DNS failure, connection refused or reset, I/O error during transfer).
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeDecode indicates a response body could not be parsed as the
	// expected JSON shape.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"
	// ErrCodeRequestFailed indicates the server answered with a non-2xx status.
	ErrCodeRequestFailed ErrorCode = "REQUEST_FAILED"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a field has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Retryable is informational only: nothing in this module retries.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport: true,
	ErrCodeInternal:  false,
}

// IsRetryableCode returns true if the error code describes a condition that
// a caller could reasonably retry.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
