// Package muukerr defines the typed error shape shared across muuk's
// subsystems: every fallible operation returns an error that carries a
// stable code alongside its message, so callers can branch on failure
// class (fatal to the run, fatal to one package, or a warning) without
// string matching.
package muukerr

import (
	"errors"
	"fmt"
)

// Code classifies an Error for programmatic handling.
type Code string

const (
	FileNotFound           Code = "file_not_found"
	ManifestNotFound        Code = "manifest_not_found"
	TomlTypeMismatch        Code = "toml_type_mismatch"
	TomlRequiredKeyMissing  Code = "toml_required_key_missing"
	DependencyCycle         Code = "dependency_cycle"
	ModuleCycle             Code = "module_cycle"
	IdentityMismatch        Code = "identity_mismatch"
	Unknown                 Code = "unknown"
)

// Error is a {message, code} value carrying an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Path    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and cause to an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// At annotates the error with the manifest/lock path it was produced for.
func (e *Error) At(path string) *Error {
	e.Path = path
	return e
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}
