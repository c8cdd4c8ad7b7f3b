// Package api exposes the engine over HTTP. It is a thin collaborator:
// all validation and money movement live in the ledger and engine, the
// handlers only translate requests and map domain errors to status
// codes.
package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vectrabank/ledger-engine/internal/ledger"
	"github.com/vectrabank/ledger-engine/internal/policy"
)

// statusFor maps a domain error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrDestinationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrAccountInactive):
		return http.StatusConflict
	case errors.Is(err, policy.ErrIneligibleAge),
		errors.Is(err, policy.ErrIneligibleBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInvalidIdentifier),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccount),
		errors.Is(err, policy.ErrUnknownAccountType):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"detail": err.Error()})
}
