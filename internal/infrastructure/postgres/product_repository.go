package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// stock_actual sale del agregado; un producto sin fila en stock tiene 0.
const productColumns = `
	p.id, p.code, p.name, COALESCE(s.quantity, 0), p.stock_min, p.stock_max,
	p.average_cost, p.active, p.created_at, p.updated_at`

const productFrom = `FROM products p LEFT JOIN stock s ON s.product_id = p.id`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.StockActual, &p.StockMin, &p.StockMax,
		&p.AverageCost, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. El stock se crea aparte (StockRepository).
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, code, name, stock_min, stock_max, average_cost, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Name, product.StockMin, product.StockMax,
		product.AverageCost, product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByCode obtiene un producto por código normalizado.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.code = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by code: %w", err)
	}
	return p, nil
}

// List lista productos ordenados por código.
func (r *ProductRepo) List(ctx context.Context, q repository.ProductQuery) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` ` + productFrom
	if !q.IncludeInactive {
		query += ` WHERE p.active`
	}
	query += ` ORDER BY p.code`
	args := []any{}
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset)
		query += ` LIMIT $1 OFFSET $2`
	} else if q.Offset > 0 {
		args = append(args, q.Offset)
		query += ` OFFSET $1`
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	out := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateThresholds actualiza stock_min / stock_max.
func (r *ProductRepo) UpdateThresholds(ctx context.Context, id string, min, max int64, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock_min = $2, stock_max = $3, updated_at = $4 WHERE id = $1`,
		id, min, max, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update thresholds: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnknownProduct
	}
	return nil
}

// UpdateCost actualiza el costo promedio ponderado.
func (r *ProductRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET average_cost = $2 WHERE id = $1`, id, cost)
	if err != nil {
		return fmt.Errorf("update cost: %w", err)
	}
	return nil
}

// SetActive activa o desactiva el producto (nunca se borra).
func (r *ProductRepo) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET active = $2, updated_at = $3 WHERE id = $1`, id, active, updatedAt)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnknownProduct
	}
	return nil
}
