package domainerrors

import "errors"

// Code represents a verification error category independent of transport layer.
// These codes describe what went wrong in flow terms, not HTTP terms.
type Code string

const (
	// CodeValidation means the verification request was rejected before any
	// network call (missing nonce or amount).
	CodeValidation Code = "validation_failed"

	// CodeConfiguration means the merchant account or host application is not
	// set up for the requested flow (3DS not enabled, browser switch scheme
	// not registered, unparseable authorization).
	CodeConfiguration Code = "configuration_error"

	// CodeTransport means a gateway call failed at the network layer.
	CodeTransport Code = "transport_error"

	// CodeGateway means the gateway answered but the body encodes a domain
	// error (malformed challenge data, rejected authentication).
	CodeGateway Code = "gateway_error"

	// CodeEngine means the authentication engine threw during setup or
	// reported a challenge timeout/error.
	CodeEngine Code = "engine_error"

	// CodeUserCanceled means the cardholder abandoned the challenge.
	CodeUserCanceled Code = "user_canceled"

	// CodeBusy means a second verification was started on an instance that
	// already has one in flight.
	CodeBusy Code = "attempt_in_flight"

	CodeInternal Code = "internal_error"
)

// Error wraps flow or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across the orchestrator, gateway
// client, and engine adapter layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
