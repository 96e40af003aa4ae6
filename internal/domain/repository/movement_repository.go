package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementQuery intención de consulta del historial de un producto.
// El almacenamiento la traduce a su propio lenguaje de consulta.
type MovementQuery struct {
	ProductID string
	Kind      entity.MovementKind // vacío = todos
	From      *time.Time
	To        *time.Time
	Limit     int // 0 = sin límite
	Offset    int
	Ascending bool // por secuencia; por defecto más recientes primero
}

// MovementRepository puerto del log append-only de movimientos. No hay Update ni Delete.
type MovementRepository interface {
	Append(ctx context.Context, movement *entity.Movement) error
	ListByProduct(ctx context.Context, q MovementQuery) ([]*entity.Movement, error)
}
