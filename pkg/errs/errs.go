// Package errs defines the error taxonomy shared by the usecases and the
// transport layer. Every error returned by a usecase is one of the typed
// errors below (or wraps one), so callers branch on Kind instead of messages.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValueIsInvalid = errors.New("value is invalid")
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrInternal       = errors.New("internal error")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	ParamName string
	Reason    string
	Cause     error
}

func NewValidationError(paramName, reason string) *ValidationError {
	return &ValidationError{ParamName: paramName, Reason: reason}
}

func NewValidationErrorWithCause(paramName, reason string, cause error) *ValidationError {
	return &ValidationError{ParamName: paramName, Reason: reason, Cause: cause}
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, %s (cause: %s)", ErrValueIsInvalid, e.ParamName, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValueIsInvalid }

func (e *ValidationError) PublicMessage() string { return e.Reason }

// ObjectNotFoundError reports a missing order, slab, product or notification.
// Object is the human readable name ("Order", "Shipping slab").
type ObjectNotFoundError struct {
	Object string
	ID     any
	Cause  error
}

func NewObjectNotFoundError(object string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{Object: object, ID: id}
}

func NewObjectNotFoundErrorWithCause(object string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{Object: object, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: object is: %s, ID is: %v (cause: %s)", ErrObjectNotFound, e.Object, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s %v", ErrObjectNotFound, e.Object, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error { return ErrObjectNotFound }

func (e *ObjectNotFoundError) PublicMessage() string { return e.Object + " not found" }

// InvalidStateError reports an operation that is not legal for the current
// lifecycle or workflow state. It is always returned before any mutation.
type InvalidStateError struct {
	Reason string
	Cause  error
}

func NewInvalidStateError(reason string) *InvalidStateError {
	return &InvalidStateError{Reason: reason}
}

func NewInvalidStateErrorWithCause(reason string, cause error) *InvalidStateError {
	return &InvalidStateError{Reason: reason, Cause: cause}
}

func (e *InvalidStateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrInvalidState, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidState, e.Reason)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

func (e *InvalidStateError) PublicMessage() string { return e.Reason }

// InternalError wraps persistence or unexpected failures. Both the sentinel
// and the cause are reachable through errors.Is.
type InternalError struct {
	Op    string
	Cause error
}

func NewInternalError(op string, cause error) *InternalError {
	return &InternalError{Op: op, Cause: cause}
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrInternal, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrInternal, e.Op)
}

func (e *InternalError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInternal}
	}
	return []error{ErrInternal, e.Cause}
}

func (e *InternalError) PublicMessage() string { return "Internal server error" }

// Kind is the coarse classification callers branch on.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNotFound
	KindInvalidState
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// KindOf classifies err. Errors outside the taxonomy are treated as internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValueIsInvalid):
		return KindValidation
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	default:
		return KindInternal
	}
}

// HTTPStatus maps err to the status code the handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNone:
		return http.StatusOK
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to API clients.
func PublicMessage(err error) string {
	var pm interface{ PublicMessage() string }
	if errors.As(err, &pm) {
		return pm.PublicMessage()
	}
	return "Internal server error"
}
