package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockRepository define el puerto para el agregado de stock por producto.
// Get/GetForUpdate devuelven un agregado en cero (Version 0) si el producto aún no tiene fila.
type StockRepository interface {
	Get(ctx context.Context, productID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila dentro de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error)
	// Upsert escribe el agregado solo si la versión almacenada es expectedVersion;
	// si no, devuelve domain.ErrConflict.
	Upsert(ctx context.Context, stock *entity.Stock, expectedVersion int64) error
}
