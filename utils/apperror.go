package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindInvalidCompanion  ErrorKind = "InvalidCompanion"
	KindInvalidTimeRange  ErrorKind = "InvalidTimeRange"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindMissingCredential ErrorKind = "MissingCredential"
	KindInvalidCredential ErrorKind = "InvalidCredential"
	KindUnauthenticated   ErrorKind = "Unauthenticated"
	KindForbidden         ErrorKind = "Forbidden"
	KindNotFound          ErrorKind = "NotFound"
	KindDuplicateIdentity ErrorKind = "DuplicateIdentity"
	KindValidation        ErrorKind = "ValidationFailure"
	KindPaymentFailure    ErrorKind = "PaymentFailure"
	KindInternal          ErrorKind = "Internal"
)

// FieldError is a per-field validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the single error type services return to the request boundary.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewError creates an AppError of the given kind.
func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// WrapError creates an AppError that keeps err as its cause.
func WrapError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// ValidationError reports malformed or missing input.
func ValidationError(message string, fields ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// InternalError wraps a store or connectivity failure. Its cause is never shown to callers.
func InternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindInvalidCompanion, KindInvalidTimeRange, KindInvalidTransition, KindValidation:
		return http.StatusBadRequest
	case KindDuplicateIdentity:
		return http.StatusConflict
	case KindMissingCredential, KindInvalidCredential, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPaymentFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
