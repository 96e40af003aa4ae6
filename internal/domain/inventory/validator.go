package inventory

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Predicados del validador de consistencia. Cada operación mutante los evalúa dentro de la
// misma unidad atómica; cualquier error aborta sin efectos parciales.

// ValidateMovementQuantity: ENTRY/EXIT exigen cantidad > 0; ADJUSTMENT exige objetivo >= 0.
func ValidateMovementQuantity(kind entity.MovementKind, quantity int64) error {
	if !kind.Valid() {
		return domain.ErrInvalidInput
	}
	if kind == entity.MovementAdjustment {
		if quantity < 0 {
			return domain.ErrInvalidQuantity
		}
		return nil
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// ValidateProductWritable exige que el producto exista y esté activo.
func ValidateProductWritable(product *entity.Product) error {
	if product == nil {
		return domain.ErrUnknownProduct
	}
	if !product.Active {
		return domain.ErrProductInactive
	}
	return nil
}

// CheckStockAfter: stock_actual >= 0 después del movimiento.
func CheckStockAfter(productID string, requested, stockBefore, stockAfter int64) error {
	if stockAfter < 0 {
		return &domain.InsufficientStockError{ProductID: productID, Requested: requested, Stock: stockBefore}
	}
	return nil
}

// CheckReservationBound: Σ reservas activas <= stock_actual.
// requested es la cantidad que el llamador intentó comprometer, solo para el mensaje de error.
func CheckReservationBound(productID string, requested, stockActual, reserved int64) error {
	if reserved > stockActual {
		available := Available(stockActual, reserved) + requested
		if available < 0 {
			available = 0
		}
		return &domain.InsufficientAvailabilityError{ProductID: productID, Requested: requested, Available: available}
	}
	return nil
}

// CheckAvailability: la cantidad pedida cabe en la disponibilidad actual.
func CheckAvailability(productID string, requested, available int64) error {
	if requested > available {
		if available < 0 {
			available = 0
		}
		return &domain.InsufficientAvailabilityError{ProductID: productID, Requested: requested, Available: available}
	}
	return nil
}

// CheckReservationOpen: solo una transición fuera de ACTIVE.
func CheckReservationOpen(r *entity.Reservation) error {
	if r == nil {
		return domain.ErrReservationNotFound
	}
	if !r.IsActive() {
		return domain.ErrReservationAlreadyClosed
	}
	return nil
}

// CheckConsumption: la salida que consume una reserva no excede su cantidad.
func CheckConsumption(r *entity.Reservation, quantity int64) error {
	if err := CheckReservationOpen(r); err != nil {
		return err
	}
	if quantity <= 0 || quantity > r.Quantity {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// CheckLedger: el agregado coincide con el fold del historial.
func CheckLedger(stock *entity.Stock, folded int64) bool {
	return stock.Quantity == folded
}

// CloseReservation aplica la transición terminal sobre la reserva en memoria.
func CloseReservation(r *entity.Reservation, state entity.ReservationState, now time.Time, reason string) error {
	if err := CheckReservationOpen(r); err != nil {
		return err
	}
	if state != entity.ReservationReleased && state != entity.ReservationConsumed {
		return domain.ErrInvalidInput
	}
	closedAt := now
	r.State = state
	r.ClosedAt = &closedAt
	r.CloseReason = reason
	return nil
}
