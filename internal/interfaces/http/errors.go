package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// StatusClientClosedRequest el cliente abandonó la petición antes de que terminara.
const StatusClientClosedRequest = 499

// errorStatus traduce un error del motor a status HTTP y código de error.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "CANCELLED"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout, "TIMEOUT"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnknownProduct):
		return fiber.StatusNotFound, "UNKNOWN_PRODUCT"
	case errors.Is(err, domain.ErrReservationNotFound):
		return fiber.StatusNotFound, "RESERVATION_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInsufficientAvailability):
		return fiber.StatusConflict, "INSUFFICIENT_AVAILABILITY"
	case errors.Is(err, domain.ErrProductInactive):
		return fiber.StatusConflict, "PRODUCT_INACTIVE"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrActiveReservations):
		return fiber.StatusConflict, "ACTIVE_RESERVATIONS"
	case errors.Is(err, domain.ErrReservationAlreadyClosed):
		return fiber.StatusConflict, "RESERVATION_CLOSED"
	case errors.Is(err, domain.ErrRepository):
		return fiber.StatusServiceUnavailable, "REPOSITORY"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse. Las fallas de infraestructura no exponen la causa.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		msg = "error interno, intente más tarde"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
