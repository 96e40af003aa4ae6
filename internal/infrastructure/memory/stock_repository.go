package memory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*stockRepo)(nil)

type stockRepo struct {
	t *tx
}

func (r *stockRepo) current(productID string) *entity.Stock {
	if st, ok := r.t.stock[productID]; ok {
		cp := *st
		return &cp
	}
	var out *entity.Stock
	r.t.read(func() {
		if st, ok := r.t.s.stock[productID]; ok {
			cp := *st
			out = &cp
		}
	})
	if out == nil {
		out = &entity.Stock{ProductID: productID}
	}
	return out
}

func (r *stockRepo) Get(_ context.Context, productID string) (*entity.Stock, error) {
	return r.current(productID), nil
}

// GetForUpdate: el bloqueo lo da Store.Run; aquí es una lectura normal.
func (r *stockRepo) GetForUpdate(_ context.Context, productID string) (*entity.Stock, error) {
	if err := r.t.write(); err != nil {
		return nil, err
	}
	return r.current(productID), nil
}

func (r *stockRepo) Upsert(_ context.Context, stock *entity.Stock, expectedVersion int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if r.current(stock.ProductID).Version != expectedVersion {
		return domain.ErrConflict
	}
	if _, staged := r.t.stockBase[stock.ProductID]; !staged {
		r.t.stockBase[stock.ProductID] = expectedVersion
	}
	cp := *stock
	r.t.stock[stock.ProductID] = &cp
	return nil
}
