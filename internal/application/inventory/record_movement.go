package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// RecordMovementInput entrada para registrar un movimiento.
// Para ENTRY/EXIT Quantity es la magnitud (> 0); para ADJUSTMENT es el valor objetivo (>= 0).
// UnitCost solo aplica a ENTRY y actualiza el costo promedio ponderado del producto.
type RecordMovementInput struct {
	ProductID string
	Kind      entity.MovementKind
	Quantity  int64
	UnitCost  *decimal.Decimal
	Reason    string
	Reference string
	Actor     string
}

// MovementResult movimiento confirmado y stock resultante.
type MovementResult struct {
	Movement *entity.Movement
	NewStock int64
}

// RecordMovement registra una entrada, salida o ajuste. No es idempotente: dos llamadas
// iguales producen dos movimientos.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, in RecordMovementInput) (*MovementResult, error) {
	if in.ProductID == "" {
		return nil, domain.ErrUnknownProduct
	}
	if err := inventory.ValidateMovementQuantity(in.Kind, in.Quantity); err != nil {
		return nil, err
	}
	if in.UnitCost != nil && (in.Kind != entity.MovementEntry || in.UnitCost.IsNegative()) {
		return nil, domain.ErrInvalidInput
	}

	var mov *entity.Movement
	err := uc.mutate(ctx, "record_movement", in.ProductID, func(ctx context.Context, repos TxRepos, st *txState) error {
		var err error
		mov, err = uc.applyMovement(ctx, repos, st, movementRequest{input: in})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", mov.ProductID).Str("movement_id", mov.ID).Str("kind", string(mov.Kind)).
		Int64("delta", mov.Delta).Int64("stock", mov.StockAfter).Str("actor", mov.Actor).Msg("movimiento registrado")
	return &MovementResult{Movement: mov, NewStock: mov.StockAfter}, nil
}

// movementRequest movimiento a aplicar dentro de una unidad atómica ya abierta.
// Si consume una reserva, releasing es la cantidad de esa reserva que se libera en la misma unidad.
type movementRequest struct {
	input         RecordMovementInput
	reservationID string
	releasing     int64
}

// applyMovement valida y aplica un movimiento: bloquea el agregado, verifica invariantes,
// agrega al log y escribe el agregado con control de versión.
func (uc *LedgerUseCase) applyMovement(ctx context.Context, repos TxRepos, st *txState, req movementRequest) (*entity.Movement, error) {
	in := req.input

	product, err := repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := inventory.ValidateProductWritable(product); err != nil {
		return nil, err
	}
	if err := inventory.ValidateMovementQuantity(in.Kind, in.Quantity); err != nil {
		return nil, err
	}

	stock, err := repos.Stock.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	reservedBefore, err := repos.Reservations.SumActive(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	reserved := reservedBefore - req.releasing

	delta, err := inventory.Delta(in.Kind, in.Quantity, stock.Quantity)
	if err != nil {
		return nil, err
	}
	after := stock.Quantity + delta
	if err := inventory.CheckStockAfter(in.ProductID, in.Quantity, stock.Quantity, after); err != nil {
		return nil, err
	}
	// El stock reservado solo sale consumiendo la reserva.
	if delta < 0 {
		if err := inventory.CheckReservationBound(in.ProductID, -delta, after, reserved); err != nil {
			return nil, err
		}
	}

	if in.Kind == entity.MovementEntry && in.UnitCost != nil {
		cost := inventory.CostCalculator(stock.Quantity, product.AverageCost, in.Quantity, *in.UnitCost)
		if err := repos.Products.UpdateCost(ctx, in.ProductID, cost); err != nil {
			return nil, err
		}
	}

	mov := &entity.Movement{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		Kind:          in.Kind,
		Quantity:      in.Quantity,
		Delta:         delta,
		StockBefore:   stock.Quantity,
		StockAfter:    after,
		UnitCost:      in.UnitCost,
		Reason:        in.Reason,
		Reference:     in.Reference,
		ReservationID: req.reservationID,
		Actor:         in.Actor,
		Sequence:      stock.LastSequence + 1,
		CreatedAt:     st.now,
	}
	if err := repos.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}

	next := &entity.Stock{
		ProductID:    in.ProductID,
		Quantity:     after,
		Version:      stock.Version + 1,
		LastSequence: mov.Sequence,
		UpdatedAt:    st.now,
	}
	if err := repos.Stock.Upsert(ctx, next, stock.Version); err != nil {
		return nil, err
	}

	st.emit(entity.EventMovementRecorded, entity.NewMovementPayload(mov))
	availBefore := inventory.Available(stock.Quantity, reservedBefore)
	availAfter := inventory.Available(after, reserved)
	if inventory.CrossedBelowMinimum(product.StockMin, availBefore, availAfter) {
		st.emit(entity.EventStockLow, entity.StockLevelPayload{
			StockActual: after,
			Reserved:    reserved,
			Available:   availAfter,
			StockMin:    product.StockMin,
		})
	}
	return mov, nil
}

// bumpVersion incrementa la versión del agregado sin cambiar la cantidad (operaciones sobre
// reservas), de modo que escrituras concurrentes sobre el mismo producto se detecten.
func bumpVersion(ctx context.Context, repos TxRepos, stock *entity.Stock, st *txState) error {
	next := *stock
	next.Version = stock.Version + 1
	next.UpdatedAt = st.now
	return repos.Stock.Upsert(ctx, &next, stock.Version)
}
