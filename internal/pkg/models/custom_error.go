package models

import (
	"errors"
	"sort"
	"strings"
)

// ErrorKind classifies failures the way they are surfaced to the user.
type ErrorKind string

const (
	KindValidation             ErrorKind = "ValidationError"
	KindGatewayRejection       ErrorKind = "GatewayRejection"
	KindTransientPoll          ErrorKind = "TransientPollError"
	KindTerminalPaymentFailure ErrorKind = "TerminalPaymentFailure"
	KindTimeoutExpiry          ErrorKind = "TimeoutExpiry"
	KindStoreFault             ErrorKind = "StoreFault"
	KindNotFound               ErrorKind = "NotFound"
	KindConflict               ErrorKind = "Conflict"
	KindInternal               ErrorKind = "Internal"
)

type CustomError struct {
	Code    string
	Message string
	Kind    ErrorKind
	Err     error
}

func (e *CustomError) Error() string {
	return e.Message
}

func (e *CustomError) ErrorCode() string {
	return e.Code
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies of a predeclared error still compare equal.
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *CustomError) Wrap(cause error) *CustomError {
	return &CustomError{Code: e.Code, Message: e.Message, Kind: e.Kind, Err: cause}
}

// WithMessage returns a copy of e with a different user-visible message.
func (e *CustomError) WithMessage(msg string) *CustomError {
	return &CustomError{Code: e.Code, Message: msg, Kind: e.Kind, Err: e.Err}
}

// ValidationError carries per-field messages for inline display.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// KindOf reports the ErrorKind of err, or KindInternal when it carries none.
func KindOf(err error) ErrorKind {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	var cerr *CustomError
	if errors.As(err, &cerr) && cerr.Kind != "" {
		return cerr.Kind
	}
	return KindInternal
}
