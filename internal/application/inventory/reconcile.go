package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ReconcileResult resultado de conciliar el agregado contra el historial.
type ReconcileResult struct {
	ProductID string           `json:"product_id"`
	Aggregate int64            `json:"aggregate"`
	Folded    int64            `json:"folded"`
	Repaired  bool             `json:"repaired"`
	Movement  *entity.Movement `json:"-"`
}

// Reconcile recalcula stock_actual sumando el historial. Si el agregado difiere se confía en el
// historial: el agregado toma el valor reconstruido y se agrega un ADJUSTMENT "reconciliation"
// con Delta 0 (StockBefore = agregado desviado, StockAfter = reconstruido) para que la suma del
// log siga siendo igual al stock.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, productID, actor string) (*ReconcileResult, error) {
	if productID == "" {
		return nil, domain.ErrUnknownProduct
	}

	var res *ReconcileResult
	err := uc.mutate(ctx, "reconcile", productID, func(ctx context.Context, repos TxRepos, st *txState) error {
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}
		stock, err := repos.Stock.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		movs, err := repos.Movements.ListByProduct(ctx, repository.MovementQuery{ProductID: productID, Ascending: true})
		if err != nil {
			return err
		}
		folded, lastSeq := inventory.Fold(movs)
		res = &ReconcileResult{ProductID: productID, Aggregate: stock.Quantity, Folded: folded}
		if inventory.CheckLedger(stock, folded) {
			return nil
		}
		if folded < 0 {
			return &domain.RepositoryError{Op: "reconcile", Err: fmt.Errorf("el historial de %s suma %d", productID, folded)}
		}

		reserved, err := repos.Reservations.SumActive(ctx, productID)
		if err != nil {
			return err
		}
		if reserved > folded {
			uc.log.Warn().Str("product_id", productID).Int64("folded", folded).Int64("reserved", reserved).
				Msg("el stock conciliado queda por debajo de las reservas activas")
		}

		seq := stock.LastSequence
		if lastSeq > seq {
			seq = lastSeq
		}
		mov := &entity.Movement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			Kind:        entity.MovementAdjustment,
			Quantity:    folded,
			Delta:       0,
			StockBefore: stock.Quantity,
			StockAfter:  folded,
			Reason:      entity.ReasonReconciliation,
			Actor:       actor,
			Sequence:    seq + 1,
			CreatedAt:   st.now,
		}
		if err := repos.Movements.Append(ctx, mov); err != nil {
			return err
		}
		next := &entity.Stock{
			ProductID:    productID,
			Quantity:     folded,
			Version:      stock.Version + 1,
			LastSequence: mov.Sequence,
			UpdatedAt:    st.now,
		}
		if err := repos.Stock.Upsert(ctx, next, stock.Version); err != nil {
			return err
		}

		res.Repaired = true
		res.Movement = mov
		st.emit(entity.EventMovementRecorded, entity.NewMovementPayload(mov))
		st.emit(entity.EventStockReconciled, entity.ReconciledPayload{
			Aggregate:  stock.Quantity,
			Folded:     folded,
			MovementID: mov.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Repaired {
		uc.log.Warn().Str("product_id", productID).Int64("aggregate", res.Aggregate).Int64("folded", res.Folded).
			Str("actor", actor).Msg("agregado de stock corregido por conciliación")
	}
	return res, nil
}

// ReconcileAll concilia todos los productos (incluidos inactivos). Los fallos individuales no
// detienen el recorrido; se devuelven unidos.
func (uc *LedgerUseCase) ReconcileAll(ctx context.Context, actor string) ([]*ReconcileResult, error) {
	products, err := uc.ListProducts(ctx, repository.ProductQuery{IncludeInactive: true})
	if err != nil {
		return nil, err
	}

	results := make([]*ReconcileResult, 0, len(products))
	var errs []error
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		r, err := uc.Reconcile(ctx, p.ID, actor)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Code, err))
			continue
		}
		results = append(results, r)
	}
	return results, errors.Join(errs...)
}
