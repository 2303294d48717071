package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kaizen-backend-go/internal/db"
)

type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindForbidden       ErrorKind = "forbidden"
	KindUnavailable     ErrorKind = "unavailable"
	KindInternal        ErrorKind = "internal"
	KindClientClosed    ErrorKind = "client_closed"
)

// StatusClientClosedRequest is the nginx convention for a request the client
// abandoned before a response was written.
const StatusClientClosedRequest = 499

// ServiceError is the error type every handler knows how to render.
// Message is safe to show to clients; Fields is only set for validation.
type ServiceError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Fields  map[string]string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrValidation(fields map[string]string) error {
	return ServiceError{Kind: KindValidation, Status: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

// RequireFields fails with "field required" for every name mapped to false.
func RequireFields(present map[string]bool) error {
	missing := map[string]string{}
	for name, ok := range present {
		if !ok {
			missing[name] = "field required"
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return ErrValidation(missing)
}

func ErrBadRequest(msg string) error {
	return ServiceError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

// ErrNotFound builds "<subject> not found".
func ErrNotFound(subject string) error {
	return ServiceError{Kind: KindNotFound, Status: http.StatusNotFound, Message: subject + " not found"}
}

func ErrUnauthenticated(msg string) error {
	return ServiceError{Kind: KindUnauthenticated, Status: http.StatusUnauthorized, Message: msg}
}

func ErrForbidden(reason string) error {
	return ServiceError{Kind: KindForbidden, Status: http.StatusForbidden, Message: reason}
}

var (
	ErrUnavailable  = ServiceError{Kind: KindUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"}
	ErrInternal     = ServiceError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "internal server error"}
	ErrClientClosed = ServiceError{Kind: KindClientClosed, Status: StatusClientClosedRequest, Message: "client closed request"}
)

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// AsServiceError converts any error into a ServiceError. Persistence
// failures lose their details here; callers log the original.
func AsServiceError(err error) ServiceError {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr
	}
	if errors.Is(err, context.Canceled) {
		return ErrClientClosed
	}
	if errors.Is(err, db.ErrUnavailable) {
		return ErrUnavailable
	}
	if errors.Is(err, db.ErrConflict) {
		return ServiceError{
			Kind:    KindValidation,
			Status:  http.StatusBadRequest,
			Message: "validation failed",
			Fields:  map[string]string{conflictField(err.Error()): "already exists"},
		}
	}
	return ErrInternal
}

// conflictField guesses the offending column from a constraint name such
// as "articles_slug_key".
func conflictField(msg string) string {
	for _, field := range []string{"slug", "email", "username"} {
		if strings.Contains(msg, "_"+field+"_key") {
			return field
		}
	}
	return "id"
}
