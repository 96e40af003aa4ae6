package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// CreateReservationInput entrada para retener stock a favor de un holder.
type CreateReservationInput struct {
	ProductID string
	HolderID  string
	Quantity  int64
	Actor     string
}

// CreateReservation crea una reserva ACTIVE si la cantidad cabe en la disponibilidad.
func (uc *LedgerUseCase) CreateReservation(ctx context.Context, in CreateReservationInput) (*entity.Reservation, error) {
	if in.ProductID == "" {
		return nil, domain.ErrUnknownProduct
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	in.HolderID = strings.TrimSpace(in.HolderID)
	if in.HolderID == "" {
		return nil, domain.ErrInvalidInput
	}

	var res *entity.Reservation
	err := uc.mutate(ctx, "create_reservation", in.ProductID, func(ctx context.Context, repos TxRepos, st *txState) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if err := inventory.ValidateProductWritable(product); err != nil {
			return err
		}
		stock, err := repos.Stock.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		reserved, err := repos.Reservations.SumActive(ctx, in.ProductID)
		if err != nil {
			return err
		}
		available := inventory.Available(stock.Quantity, reserved)
		if err := inventory.CheckAvailability(in.ProductID, in.Quantity, available); err != nil {
			return err
		}
		if err := inventory.CheckReservationBound(in.ProductID, in.Quantity, stock.Quantity, reserved+in.Quantity); err != nil {
			return err
		}

		res = &entity.Reservation{
			ID:        uuid.New().String(),
			ProductID: in.ProductID,
			HolderID:  in.HolderID,
			Quantity:  in.Quantity,
			State:     entity.ReservationActive,
			CreatedBy: in.Actor,
			CreatedAt: st.now,
		}
		if err := repos.Reservations.Create(ctx, res); err != nil {
			return err
		}
		if err := bumpVersion(ctx, repos, stock, st); err != nil {
			return err
		}

		st.emit(entity.EventReservationCreated, entity.NewReservationPayload(res, in.Actor))
		if inventory.CrossedBelowMinimum(product.StockMin, available, available-in.Quantity) {
			st.emit(entity.EventStockLow, entity.StockLevelPayload{
				StockActual: stock.Quantity,
				Reserved:    reserved + in.Quantity,
				Available:   available - in.Quantity,
				StockMin:    product.StockMin,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", res.ProductID).Str("reservation_id", res.ID).Str("holder_id", res.HolderID).
		Int64("quantity", res.Quantity).Str("actor", in.Actor).Msg("reserva creada")
	return res, nil
}

// ReleaseReservation pasa una reserva ACTIVE a RELEASED sin mover stock.
func (uc *LedgerUseCase) ReleaseReservation(ctx context.Context, reservationID, reason, actor string) (*entity.Reservation, error) {
	pre, err := uc.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := inventory.CheckReservationOpen(pre); err != nil {
		return nil, err
	}

	var res *entity.Reservation
	err = uc.mutate(ctx, "release_reservation", pre.ProductID, func(ctx context.Context, repos TxRepos, st *txState) error {
		r, err := repos.Reservations.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := inventory.CloseReservation(r, entity.ReservationReleased, st.now, reason); err != nil {
			return err
		}
		r.ClosedBy = actor
		if err := repos.Reservations.Close(ctx, r); err != nil {
			return err
		}
		stock, err := repos.Stock.GetForUpdate(ctx, r.ProductID)
		if err != nil {
			return err
		}
		if err := bumpVersion(ctx, repos, stock, st); err != nil {
			return err
		}
		st.emit(entity.EventReservationReleased, entity.NewReservationPayload(r, actor))
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", res.ProductID).Str("reservation_id", res.ID).Str("actor", actor).Msg("reserva liberada")
	return res, nil
}

// ConsumeReservation registra la salida que consume la reserva y la cierra como CONSUMED.
// La reserva se cierra completa aunque el consumo sea parcial; el remanente vuelve a estar disponible.
func (uc *LedgerUseCase) ConsumeReservation(ctx context.Context, reservationID string, quantity int64, actor string) (*MovementResult, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	pre, err := uc.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := inventory.CheckConsumption(pre, quantity); err != nil {
		return nil, err
	}

	var mov *entity.Movement
	err = uc.mutate(ctx, "consume_reservation", pre.ProductID, func(ctx context.Context, repos TxRepos, st *txState) error {
		r, err := repos.Reservations.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := inventory.CheckConsumption(r, quantity); err != nil {
			return err
		}

		mov, err = uc.applyMovement(ctx, repos, st, movementRequest{
			input: RecordMovementInput{
				ProductID: r.ProductID,
				Kind:      entity.MovementExit,
				Quantity:  quantity,
				Reason:    entity.ReasonReservationConsumption,
				Reference: r.HolderID,
				Actor:     actor,
			},
			reservationID: r.ID,
			releasing:     r.Quantity,
		})
		if err != nil {
			return err
		}

		r.ConsumedQuantity = quantity
		r.MovementID = mov.ID
		if err := inventory.CloseReservation(r, entity.ReservationConsumed, st.now, entity.ReasonReservationConsumption); err != nil {
			return err
		}
		r.ClosedBy = actor
		if err := repos.Reservations.Close(ctx, r); err != nil {
			return err
		}
		st.emit(entity.EventReservationConsumed, entity.NewReservationPayload(r, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", mov.ProductID).Str("reservation_id", reservationID).Str("movement_id", mov.ID).
		Int64("quantity", quantity).Str("actor", actor).Msg("reserva consumida")
	return &MovementResult{Movement: mov, NewStock: mov.StockAfter}, nil
}
