package ledger

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Stable error kinds surfaced by ledger and sharing operations. Handlers map
// them to HTTP statuses with Status; everything else is an internal error.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("conflict")
	ErrExpired           = errors.New("expired")
)

// Status maps an operation error to an HTTP status code. NotFound and
// Unauthorized intentionally collapse to 404 so callers cannot probe for the
// existence of other users' data.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrExpired):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthorized):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the caller-visible message for an operation error. Internal
// failures are masked.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient funds"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthorized):
		return "not found"
	case errors.Is(err, ErrConflict):
		return err.Error()
	default:
		return "internal server error"
	}
}
