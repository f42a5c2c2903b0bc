package domain

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every domain error unwraps to exactly one of these so the
// transport layer can map it to a status code with errors.Is.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
)

var (
	ErrInvalidCredentials = kindError(ErrUnauthorized, "invalid credentials")
	ErrTokenMissing       = kindError(ErrUnauthorized, "missing token")
	ErrTokenMalformed     = kindError(ErrUnauthorized, "malformed token")
	ErrTokenExpired       = kindError(ErrUnauthorized, "token expired")
	ErrTokenRevoked       = kindError(ErrUnauthorized, "token revoked")
	ErrUnknownPrincipal   = kindError(ErrUnauthorized, "unknown principal")

	ErrAccountDisabled = kindError(ErrForbidden, "account disabled")
	ErrNotOwner        = kindError(ErrForbidden, "application belongs to another applicant")
	ErrStaffOnly       = kindError(ErrForbidden, "operation requires staff role")

	ErrUserNotFound        = kindError(ErrNotFound, "user not found")
	ErrPermitTypeNotFound  = kindError(ErrNotFound, "permit type not found")
	ErrApplicationNotFound = kindError(ErrNotFound, "application not found")
	ErrDocumentNotFound    = kindError(ErrNotFound, "document not found")
	ErrFileMissing         = kindError(ErrNotFound, "document file missing from storage")

	ErrUserExists = kindError(ErrConflict, "user already exists")

	ErrInvalidTransition = kindError(ErrInvalidState, "invalid status transition")
	ErrNotEditable       = kindError(ErrInvalidState, "application is no longer editable")
	ErrConcurrentUpdate  = kindError(ErrInvalidState, "application was modified concurrently")

	ErrUnknownStatus = kindError(ErrInvalidArgument, "unknown application status")
	ErrUnknownRole   = kindError(ErrInvalidArgument, "unknown role")
	ErrEmptyUpdate   = kindError(ErrInvalidArgument, "update contains no changes")
	ErrFileTooLarge  = kindError(ErrInvalidArgument, "file exceeds maximum upload size")
	ErrEmptyFile     = kindError(ErrInvalidArgument, "file is empty")
)

type domainError struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

// ValidationError carries per-field messages. It unwraps to ErrInvalidArgument.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns nil when fields is empty.
func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }
