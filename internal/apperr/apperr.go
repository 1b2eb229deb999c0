// Package apperr defines the error kinds shared by the store, the provider
// adapters and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindGateway
	KindConfiguration
	KindUpstream
)

var kindNames = map[Kind]string{
	KindInternal:      "internal",
	KindValidation:    "validation",
	KindNotFound:      "not_found",
	KindGateway:       "gateway",
	KindConfiguration: "configuration",
	KindUpstream:      "upstream",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// statusByKind is the single error-kind to HTTP status table used by every handler.
var statusByKind = map[Kind]int{
	KindInternal:      http.StatusInternalServerError,
	KindValidation:    http.StatusBadRequest,
	KindNotFound:      http.StatusNotFound,
	KindGateway:       http.StatusInternalServerError,
	KindConfiguration: http.StatusInternalServerError,
	KindUpstream:      http.StatusInternalServerError,
}

// HTTPStatus returns the response status for errors of this kind.
func (k Kind) HTTPStatus() int {
	if status, ok := statusByKind[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the concrete error carried across package boundaries.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or missing request fields.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound reports that a referenced resource does not exist.
func NotFound(op string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: "not found", Err: err}
}

// Gateway wraps a billing provider failure.
func Gateway(op string, err error) *Error {
	return &Error{Kind: KindGateway, Op: op, Err: err}
}

// Configuration reports a missing secret or required argument.
func Configuration(op, message string) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: message}
}

// Upstream wraps a completion API failure.
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// FieldsOf returns the field errors carried by a validation error.
func FieldsOf(err error) []FieldError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
