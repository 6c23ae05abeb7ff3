package apperror

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	KindValidation           = "validation_error"
	KindNotFound             = "not_found"
	KindConflict             = "conflict"
	KindInsufficientQuantity = "insufficient_quantity"
	KindSameDepartment       = "same_department"
	KindInvalidQuantity      = "invalid_quantity"
	KindAuth                 = "auth_error"
	KindForbidden            = "forbidden"
	KindTimeout              = "timeout"
	KindTransport            = "transport_error"
	KindInternal             = "internal"
)

// Error is a business error carrying the HTTP status it maps to and a
// message that is safe to show to the user.
type Error struct {
	Kind    string
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Kind + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can compare against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrConflict             = &Error{Kind: KindConflict}
	ErrInsufficientQuantity = &Error{Kind: KindInsufficientQuantity}
	ErrSameDepartment       = &Error{Kind: KindSameDepartment}
	ErrInvalidQuantity      = &Error{Kind: KindInvalidQuantity}
	ErrAuth                 = &Error{Kind: KindAuth}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrTimeout              = &Error{Kind: KindTimeout}
)

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Status: fiber.StatusBadRequest, Message: message, Fields: fields}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Status: fiber.StatusNotFound, Message: entity + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Status: fiber.StatusConflict, Message: message}
}

func InsufficientQuantity(message string) *Error {
	return &Error{Kind: KindInsufficientQuantity, Status: fiber.StatusConflict, Message: message}
}

func SameDepartment() *Error {
	return &Error{Kind: KindSameDepartment, Status: fiber.StatusConflict, Message: "source and destination departments must differ"}
}

func InvalidQuantity(message string) *Error {
	return &Error{Kind: KindInvalidQuantity, Status: fiber.StatusConflict, Message: message}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Status: fiber.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Status: fiber.StatusForbidden, Message: message}
}

func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Status: fiber.StatusGatewayTimeout, Message: "the request timed out", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: fiber.StatusInternalServerError, Message: "internal server error", Err: err}
}

// From normalises any error into an *Error. Record-not-found becomes
// NotFound for the given entity and deadline errors become Timeout.
func From(err error, entity string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e := NotFound(entity)
		e.Err = err
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}
	return Internal(err)
}

// Wrap turns gorm's not-found into NotFound(entity) and passes other errors through.
func Wrap(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e := NotFound(entity)
		e.Err = err
		return e
	}
	return err
}
