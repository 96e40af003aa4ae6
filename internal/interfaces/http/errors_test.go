package http

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
		{domain.ErrUnknownProduct, fiber.StatusNotFound, "UNKNOWN_PRODUCT"},
		{&domain.InsufficientStockError{ProductID: "p", Requested: 5, Stock: 2}, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
		{&domain.InsufficientAvailabilityError{ProductID: "p", Requested: 5}, fiber.StatusConflict, "INSUFFICIENT_AVAILABILITY"},
		{domain.ErrProductInactive, fiber.StatusConflict, "PRODUCT_INACTIVE"},
		{domain.ErrReservationAlreadyClosed, fiber.StatusConflict, "RESERVATION_CLOSED"},
		{&domain.RepositoryError{Op: "record_movement", Err: errors.New("conn reset")}, fiber.StatusServiceUnavailable, "REPOSITORY"},
		{fmt.Errorf("wrap: %w", context.Canceled), StatusClientClosedRequest, "CANCELLED"},
		{context.DeadlineExceeded, fiber.StatusRequestTimeout, "TIMEOUT"},
		{errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, code := errorStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}
