package domain

import (
	"errors"
	"fmt"
)

// NotFoundError: the addressed row does not exist (404).
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "data tidak ditemukan"
	}
	return e.Resource + " tidak ditemukan"
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError: the request itself is malformed (400). Field names use the JSON key.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return e.Field + ": " + e.Msg
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return e.Field + " tidak valid"
	default:
		return "validasi gagal"
	}
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError: the request is well formed but clashes with current state (409),
// e.g. overlapping dates or a refused status transition.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Resource != "" {
		return fmt.Sprintf("konflik pada %s", e.Resource)
	}
	return "konflik data"
}

func (e ConflictError) Unwrap() error { return e.Err }

// InternalError wraps data store and upstream failures (500). Its message is shown to
// the caller, so Msg must not carry secrets.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "terjadi kesalahan internal"
	}
}

func (e InternalError) Unwrap() error { return e.Err }

// UnauthorizedError: no valid session (401).
type UnauthorizedError struct{ Msg string }

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "login diperlukan"
	}
	return e.Msg
}

// ForbiddenError: a session exists but may not touch the resource (403).
type ForbiddenError struct{ Msg string }

func (e ForbiddenError) Error() string {
	if e.Msg == "" {
		return "akses ditolak"
	}
	return e.Msg
}

func is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func IsNotFound(err error) bool     { return is[NotFoundError](err) }
func IsValidation(err error) bool   { return is[ValidationError](err) }
func IsConflict(err error) bool     { return is[ConflictError](err) }
func IsInternal(err error) bool     { return is[InternalError](err) }
func IsUnauthorized(err error) bool { return is[UnauthorizedError](err) }
func IsForbidden(err error) bool    { return is[ForbiddenError](err) }
