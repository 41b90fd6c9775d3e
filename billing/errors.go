package billing

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a billing failure. Kinds are discriminable in-process via
// KindOf / errors.As; at the serialization boundary an Error collapses to its
// message string, so hosts on the far side of the command channel only ever
// see text.
type Kind uint8

const (
	// KindLocalIO covers local serialization and I/O faults on this side of
	// the native boundary.
	KindLocalIO Kind = iota + 1

	// KindNativeInvoke covers rejections and failures reported by (or while
	// reaching) the native backend. It may carry a backend code and payload.
	KindNativeInvoke

	// KindUnsupported marks operations the active backend cannot perform.
	KindUnsupported

	// KindSecurityGate marks a failed code-signature preflight. No native
	// call was attempted.
	KindSecurityGate
)

func (k Kind) String() string {
	switch k {
	case KindLocalIO:
		return "local_io"
	case KindNativeInvoke:
		return "native_invoke"
	case KindUnsupported:
		return "unsupported"
	case KindSecurityGate:
		return "security_gate"
	default:
		return "unknown"
	}
}

// Error is the single error type every backend surfaces. Adapters never retry;
// the dispatcher re-surfaces the error to the host unchanged.
type Error struct {
	kind    Kind
	message string

	// code is the backend-reported error code, when one exists (e.g. a
	// Windows HRESULT rendered as hex, or a Play Billing response code).
	code string

	// data is an opaque backend payload attached to the failure.
	data string

	cause error
}

func (e *Error) Error() string {
	msg := "iap: " + e.message
	if e.code != "" {
		msg += " (code " + e.code + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind   { return e.kind }
func (e *Error) Code() string { return e.code }
func (e *Error) Data() string { return e.data }

// MarshalJSON serializes the error as its message string only. The taxonomy
// never crosses the command boundary.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Error())
}

// KindOf reports the Kind of err, or 0 if err is not a billing error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.kind
	}
	return 0
}

// ErrLocalIO wraps a local serialization or I/O fault.
func ErrLocalIO(err error, message string) *Error {
	return &Error{kind: KindLocalIO, message: message, cause: err}
}

// ErrNativeInvoke reports a failure raised by the native backend.
func ErrNativeInvoke(message string) *Error {
	return &Error{kind: KindNativeInvoke, message: message}
}

// ErrNativeInvokef is ErrNativeInvoke with formatting.
func ErrNativeInvokef(format string, args ...any) *Error {
	return &Error{kind: KindNativeInvoke, message: fmt.Sprintf(format, args...)}
}

// WrapNativeInvoke reports a native failure with an underlying cause.
func WrapNativeInvoke(err error, message string) *Error {
	return &Error{kind: KindNativeInvoke, message: message, cause: err}
}

// WithCode attaches the backend-reported code and opaque payload.
func (e *Error) WithCode(code, data string) *Error {
	e.code = code
	e.data = data
	return e
}

// ErrUnsupported reports that the active backend cannot perform op.
func ErrUnsupported(op string) *Error {
	return &Error{kind: KindUnsupported, message: op + " is not supported on this platform"}
}

// ErrSecurityGate reports a failed code-signature validation.
func ErrSecurityGate(err error, message string) *Error {
	return &Error{kind: KindSecurityGate, message: message, cause: err}
}
