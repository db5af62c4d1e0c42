// Package apperr is the error taxonomy shared by usecases and the HTTP adapter.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBusinessRule
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindConflict
	KindRateLimited
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAgeRequirement = "AGE_REQUIREMENT_NOT_MET"
	CodeDuplicate      = "DUPLICATE_APPLICATION"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and code, so sentinels built with the
// constructors below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

func Validation(msg string, details any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg, Details: details}
}

func BusinessRule(code, msg string) *Error {
	return &Error{Kind: KindBusinessRule, Code: code, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindAuthentication, Code: CodeUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Code: CodeForbidden, Message: msg}
}

func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Code: CodeConflict, Message: msg, Err: cause}
}

func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Code: CodeRateLimited, Message: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of err, or CodeInternal.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
