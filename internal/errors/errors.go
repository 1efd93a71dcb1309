package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kind is a sentinel that errors are marked with. Matching is by code, so a kind
// survives wrapping and marking.
type Kind struct {
	code   string
	status int
	msg    string
}

func (k *Kind) Error() string { return k.code + ": " + k.msg }

// Code is the machine readable code rendered in error responses
func (k *Kind) Code() string { return k.code }

func (k *Kind) Is(target error) bool {
	t, ok := target.(*Kind)
	return ok && t.code == k.code
}

func newKind(code string, status int, msg string) *Kind {
	k := &Kind{code: code, status: status, msg: msg}
	kinds = append(kinds, k)
	return k
}

// kinds are checked in declaration order, so more specific kinds come first
var kinds []*Kind

var (
	ErrNotFound         = newKind("not_found", http.StatusNotFound, "resource not found")
	ErrAlreadyExists    = newKind("already_exists", http.StatusConflict, "resource already exists")
	ErrValidation       = newKind("validation_error", http.StatusBadRequest, "validation error")
	ErrInvalidOperation = newKind("invalid_operation", http.StatusBadRequest, "invalid operation")
	// ErrDuplicateWarning is advisory: the caller must confirm before proceeding
	ErrDuplicateWarning = newKind("duplicate_warning", http.StatusConflict, "possible duplicate")
	// ErrRecognition marks a failed or unparseable call to the document recognizer
	ErrRecognition = newKind("recognition_error", http.StatusBadGateway, "recognition failed")
	ErrStorage     = newKind("storage_error", http.StatusInternalServerError, "object storage error")
	ErrDatabase    = newKind("database_error", http.StatusInternalServerError, "database error")
	ErrSystem      = newKind("system_error", http.StatusInternalServerError, "system error")
)

// KindOf returns the first kind err is marked with, or ErrSystem
func KindOf(err error) *Kind {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrSystem
}

func HTTPStatusFromErr(err error) int {
	return KindOf(err).status
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsDuplicateWarning checks if an error is an unconfirmed duplicate warning
func IsDuplicateWarning(err error) bool {
	return errors.Is(err, ErrDuplicateWarning)
}

// IsRecognition checks if an error came from the recognizer
func IsRecognition(err error) bool {
	return errors.Is(err, ErrRecognition)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsSystem(err error) bool {
	return errors.Is(err, ErrSystem)
}
