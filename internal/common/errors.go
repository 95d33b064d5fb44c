package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorKind classifies domain errors so the HTTP boundary can translate them
// without inspecting message strings.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindDependency
)

// DomainError is the error type every service returns. Field is set for
// validation errors so clients can tag the offending input.
type DomainError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func NewValidationError(field, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Field: field, Message: message}
}

func NewAuthError(message string) *DomainError {
	return &DomainError{Kind: KindAuth, Message: message}
}

func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(resource string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewDependencyError wraps a collaborator failure (storage, email). The
// wrapped error is logged server-side, never serialized to clients.
func NewDependencyError(message string, err error) *DomainError {
	return &DomainError{Kind: KindDependency, Message: message, Err: err}
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// Envelope is the uniform response body: {status, message?, data?, errors?}.
type Envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// SendSuccess writes a success envelope.
func SendSuccess(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Envelope{Status: "success", Message: message, Data: data})
}

// SendError translates a domain error into the envelope with the right HTTP
// status. Unknown errors surface as a generic 500 with no internal detail.
func SendError(c echo.Context, err error) error {
	var de *DomainError
	if !errors.As(err, &de) {
		return c.JSON(http.StatusInternalServerError, Envelope{Status: "error", Message: "Internal server error"})
	}

	env := Envelope{Status: "error", Message: de.Message}
	code := http.StatusInternalServerError

	switch de.Kind {
	case KindValidation:
		code = http.StatusBadRequest
		if de.Field != "" {
			env.Errors = map[string]string{de.Field: de.Message}
		}
	case KindAuth:
		code = http.StatusUnauthorized
	case KindForbidden:
		code = http.StatusForbidden
	case KindNotFound:
		code = http.StatusNotFound
	case KindConflict:
		code = http.StatusConflict
	case KindDependency:
		code = http.StatusInternalServerError
		env.Message = de.Message // wrapped cause stays out of the payload
	}

	return c.JSON(code, env)
}
