package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func repos(q Querier) inventory.TxRepos {
	return inventory.TxRepos{
		Products:     NewProductRepository(q),
		Stock:        NewStockRepository(q),
		Movements:    NewMovementRepository(q),
		Reservations: NewReservationRepository(q),
	}
}

// Run inicia una transacción, toma el advisory lock del producto (si hay productID), ejecuta fn
// con repos atados a la tx y hace Commit o Rollback. El lock se libera con la transacción y
// serializa el producto también entre instancias de la API.
func (r *TxRunner) Run(ctx context.Context, productID string, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if productID != "" {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, productID); err != nil {
			return fmt.Errorf("advisory lock: %w", err)
		}
	}

	if err := fn(ctx, repos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Snapshot lectura consistente: transacción REPEATABLE READ de solo lectura.
func (r *TxRunner) Snapshot(ctx context.Context, _ string, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, repos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
