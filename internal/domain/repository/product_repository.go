package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductQuery intención de consulta para listar productos (filtro + paginación).
type ProductQuery struct {
	IncludeInactive bool
	Limit           int // 0 = sin límite
	Offset          int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID/GetByCode devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	List(ctx context.Context, q ProductQuery) ([]*entity.Product, error)
	UpdateThresholds(ctx context.Context, id string, min, max int64, updatedAt time.Time) error
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
}
