package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) get(ctx context.Context, productID, suffix string) (*entity.Stock, error) {
	query := `
		SELECT product_id, quantity, version, last_sequence, updated_at
		FROM stock WHERE product_id = $1` + suffix
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&s.ProductID, &s.Quantity, &s.Version, &s.LastSequence, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return &entity.Stock{ProductID: productID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Get obtiene el agregado de stock de un producto.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.Stock, error) {
	return r.get(ctx, productID, "")
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	return r.get(ctx, productID, " FOR UPDATE")
}

// Upsert escribe el agregado con control optimista: la primera escritura inserta (versión
// esperada 0); las siguientes actualizan solo si la versión almacenada coincide.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock, expectedVersion int64) error {
	var (
		query string
		args  []any
	)
	if expectedVersion == 0 {
		query = `
			INSERT INTO stock (product_id, quantity, version, last_sequence, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (product_id) DO NOTHING`
		args = []any{stock.ProductID, stock.Quantity, stock.Version, stock.LastSequence, stock.UpdatedAt}
	} else {
		query = `
			UPDATE stock SET quantity = $2, version = $3, last_sequence = $4, updated_at = $5
			WHERE product_id = $1 AND version = $6`
		args = []any{stock.ProductID, stock.Quantity, stock.Version, stock.LastSequence, stock.UpdatedAt, expectedVersion}
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
