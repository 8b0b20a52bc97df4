package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so transport code can map it to a status code
// while internal logging keeps forbidden and not-found distinguishable.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindDependency
)

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

func Validation(format string, args ...any) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error {
	return &Error{kind: KindUnauthorized, msg: msg}
}

func Forbidden(msg string) error {
	return &Error{kind: KindForbidden, msg: msg}
}

func NotFound(what string) error {
	return &Error{kind: KindNotFound, msg: what + " not found"}
}

func Dependency(msg string, err error) error {
	return &Error{kind: KindDependency, msg: msg, err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// StatusCode maps an error to the HTTP status the API returns for it.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
