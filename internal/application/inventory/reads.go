package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

func pageLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// History devuelve los movimientos de un producto según la intención de consulta.
func (uc *LedgerUseCase) History(ctx context.Context, q repository.MovementQuery) ([]*entity.Movement, error) {
	if q.ProductID == "" {
		return nil, domain.ErrUnknownProduct
	}
	if q.Kind != "" && !q.Kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if q.Offset < 0 || (q.From != nil && q.To != nil && q.To.Before(*q.From)) {
		return nil, domain.ErrInvalidInput
	}
	q.Limit = pageLimit(q.Limit)

	var out []*entity.Movement
	err := uc.snapshot(ctx, "history", q.ProductID, func(ctx context.Context, repos TxRepos) error {
		product, err := repos.Products.GetByID(ctx, q.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}
		out, err = repos.Movements.ListByProduct(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetReservation obtiene una reserva por ID.
func (uc *LedgerUseCase) GetReservation(ctx context.Context, id string) (*entity.Reservation, error) {
	if id == "" {
		return nil, domain.ErrReservationNotFound
	}
	var out *entity.Reservation
	err := uc.snapshot(ctx, "get_reservation", "", func(ctx context.Context, repos TxRepos) error {
		r, err := repos.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrReservationNotFound
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListReservations lista reservas por producto, holder y/o estado.
func (uc *LedgerUseCase) ListReservations(ctx context.Context, q repository.ReservationQuery) ([]*entity.Reservation, error) {
	if q.State != "" && !q.State.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if q.Offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	q.Limit = pageLimit(q.Limit)

	var out []*entity.Reservation
	err := uc.snapshot(ctx, "list_reservations", q.ProductID, func(ctx context.Context, repos TxRepos) error {
		var err error
		out, err = repos.Reservations.List(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
