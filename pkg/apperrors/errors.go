// Package apperrors defines the error taxonomy shared by all features.
// Services return these sentinels (usually wrapped with context via %w);
// controllers translate them with HTTPStatus.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrNotFound: template, document, user or target does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden: the actor is not allowed to perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState: the document status or stage order does not permit the action.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyApproved: a target can be approved at most once.
	ErrAlreadyApproved = errors.New("already approved")

	// ErrResolutionFailure: the organization directory was unreachable.
	// Callers treat resolution failure as a denial (fail closed); it is kept
	// distinct from ErrForbidden so the real cause lands in the logs.
	ErrResolutionFailure = errors.New("target resolution failed")

	// ErrConflict: a concurrent writer changed the document between read and save.
	ErrConflict = errors.New("document was modified concurrently")
)

// HTTPStatus maps a service error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrResolutionFailure):
		return fiber.StatusForbidden
	case errors.Is(err, ErrAlreadyApproved), errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidState):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
