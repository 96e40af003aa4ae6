package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma unidad atómica.
type TxRepos struct {
	Products     repository.ProductRepository
	Stock        repository.StockRepository
	Movements    repository.MovementRepository
	Reservations repository.ReservationRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// productID acota la unidad atómica a un producto (bloqueo de fila/advisory lock); vacío = sin
// bloqueo por producto. Si fn devuelve error se hace rollback y no queda ningún efecto parcial.
type TxRunner interface {
	Run(ctx context.Context, productID string, fn func(ctx context.Context, repos TxRepos) error) error
	// Snapshot ejecuta fn en una transacción de solo lectura con una vista consistente.
	Snapshot(ctx context.Context, productID string, fn func(ctx context.Context, repos TxRepos) error) error
}

// EventPublisher sumidero de eventos de auditoría/notificación. Se invoca después del commit;
// un error nunca revierte la operación.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event) error
}

// CommitHook se ejecuta después de cada commit exitoso que toca productID
// (p. ej. invalidación de caché).
type CommitHook func(ctx context.Context, productID string)

// Reader lecturas puras del motor; la caché de lectura implementa la misma interfaz.
type Reader interface {
	Available(ctx context.Context, productID string) (*Availability, error)
	History(ctx context.Context, q repository.MovementQuery) ([]*entity.Movement, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, entity.Event) error { return nil }
