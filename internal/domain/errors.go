package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Validación: el llamador envió datos incorrectos; no hubo cambios de estado.
	ErrInvalidQuantity = errors.New("cantidad inválida")
	ErrUnknownProduct  = errors.New("producto desconocido")

	// Reglas de negocio.
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrInsufficientAvailability = errors.New("disponibilidad insuficiente")
	ErrProductInactive          = errors.New("producto inactivo")
	ErrActiveReservations       = errors.New("el producto tiene reservas activas")

	// Máquina de estados de reservas.
	ErrReservationNotFound      = errors.New("reserva no encontrada")
	ErrReservationAlreadyClosed = errors.New("la reserva ya está cerrada")

	// Infraestructura.
	ErrRepository = errors.New("error de repositorio")
)

// InsufficientStockError indica que una salida dejaría el stock físico en negativo.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Stock     int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: solicitado %d, en stock %d", e.ProductID, e.Requested, e.Stock)
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InsufficientAvailabilityError indica que la operación excede stock menos reservas activas.
type InsufficientAvailabilityError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("disponibilidad insuficiente para el producto %s: solicitado %d, disponible %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientAvailabilityError) Is(target error) bool {
	return target == ErrInsufficientAvailability
}

// RepositoryError envuelve una falla del almacenamiento (o conflictos que agotaron los reintentos).
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("repositorio: %v", e.Err)
	}
	return fmt.Sprintf("repositorio: %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepository
}

// IsBusinessError indica si err pertenece a la taxonomía de dominio (validación, regla de negocio
// o máquina de estados) y por lo tanto debe llegar intacto al llamador.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrDuplicate,
		ErrInvalidQuantity, ErrUnknownProduct,
		ErrInsufficientStock, ErrInsufficientAvailability, ErrProductInactive, ErrActiveReservations,
		ErrReservationNotFound, ErrReservationAlreadyClosed,
		ErrRepository,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
