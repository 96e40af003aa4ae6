package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ReservationQuery intención de consulta de reservas.
type ReservationQuery struct {
	ProductID string
	HolderID  string
	State     entity.ReservationState // vacío = todos
	Limit     int
	Offset    int
}

// ReservationRepository puerto de persistencia de reservas.
// GetByID/GetForUpdate devuelven (nil, nil) cuando no existe.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error)
	// Close persiste la transición de ACTIVE a un estado terminal; si la fila ya no está
	// ACTIVE devuelve domain.ErrReservationAlreadyClosed.
	Close(ctx context.Context, reservation *entity.Reservation) error
	SumActive(ctx context.Context, productID string) (int64, error)
	List(ctx context.Context, q ReservationQuery) ([]*entity.Reservation, error)
}
