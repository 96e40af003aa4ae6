package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/clock"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 10 * time.Millisecond
)

// LedgerUseCase motor de inventario: movimientos, reservas, disponibilidad y conciliación.
// Toda mutación se serializa por producto (KeyedLocker + TxRunner) y pasa por el validador
// de consistencia dentro de la misma unidad atómica.
type LedgerUseCase struct {
	tx         TxRunner
	locks      *KeyedLocker
	clock      clock.Clock
	publisher  EventPublisher
	log        *logger.Logger
	maxRetries int
	backoff    time.Duration
	hooks      []CommitHook
}

// Option configura el LedgerUseCase.
type Option func(*LedgerUseCase)

// WithClock inyecta el reloj (tests).
func WithClock(c clock.Clock) Option {
	return func(uc *LedgerUseCase) { uc.clock = c }
}

// WithPublisher define el sumidero de eventos.
func WithPublisher(p EventPublisher) Option {
	return func(uc *LedgerUseCase) { uc.publisher = p }
}

// WithLogger define el logger estructurado.
func WithLogger(l *logger.Logger) Option {
	return func(uc *LedgerUseCase) { uc.log = l.Component("ledger") }
}

// WithMaxRetries reintentos ante conflicto de versión; negativo se trata como 0.
func WithMaxRetries(n int) Option {
	return func(uc *LedgerUseCase) {
		if n < 0 {
			n = 0
		}
		uc.maxRetries = n
	}
}

// WithRetryBackoff espera base entre reintentos (crece linealmente).
func WithRetryBackoff(d time.Duration) Option {
	return func(uc *LedgerUseCase) { uc.backoff = d }
}

// WithCommitHook registra un hook post-commit (p. ej. invalidación de caché).
func WithCommitHook(h CommitHook) Option {
	return func(uc *LedgerUseCase) { uc.hooks = append(uc.hooks, h) }
}

// NewLedgerUseCase construye el motor sobre un TxRunner.
func NewLedgerUseCase(tx TxRunner, opts ...Option) *LedgerUseCase {
	uc := &LedgerUseCase{
		tx:         tx,
		locks:      NewKeyedLocker(),
		clock:      clock.NewSystem(),
		publisher:  nopPublisher{},
		log:        logger.Nop(),
		maxRetries: defaultMaxRetries,
		backoff:    defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// txState estado de un intento de mutación: instante de commit y eventos pendientes.
type txState struct {
	productID string
	now       time.Time
	events    []entity.Event
}

func (s *txState) emit(t entity.EventType, payload any) {
	s.events = append(s.events, entity.Event{
		ID:        uuid.New().String(),
		Type:      t,
		ProductID: s.productID,
		Payload:   payload,
		Timestamp: s.now,
	})
}

// mutate toma el candado del producto, ejecuta fn en una unidad atómica con reintentos ante
// ErrConflict y, tras el commit, corre los hooks y publica los eventos.
// Una vez tomado el candado la operación ya no se cancela.
func (uc *LedgerUseCase) mutate(
	ctx context.Context,
	op, productID string,
	fn func(ctx context.Context, repos TxRepos, st *txState) error,
) error {
	unlock, err := uc.locks.Lock(ctx, productID)
	if err != nil {
		return err
	}
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	var st *txState
	for attempt := 0; ; attempt++ {
		st = &txState{productID: productID, now: uc.clock.Now()}
		err = uc.tx.Run(ctx, productID, func(ctx context.Context, repos TxRepos) error {
			return fn(ctx, repos, st)
		})
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt >= uc.maxRetries {
			break
		}
		uc.log.Warn().Str("op", op).Str("product_id", productID).Int("attempt", attempt+1).
			Msg("conflicto de versión, reintentando")
		time.Sleep(uc.backoff * time.Duration(attempt+1))
	}
	if err != nil {
		return uc.classify(op, err)
	}

	for _, h := range uc.hooks {
		h(ctx, productID)
	}
	for _, ev := range st.events {
		if err := uc.publisher.Publish(ctx, ev); err != nil {
			uc.log.Error().Err(err).Str("event_type", string(ev.Type)).Str("product_id", productID).
				Msg("no se pudo publicar el evento")
		}
	}
	return nil
}

// snapshot lectura consistente; los errores de infraestructura salen como RepositoryError.
func (uc *LedgerUseCase) snapshot(
	ctx context.Context,
	op, productID string,
	fn func(ctx context.Context, repos TxRepos) error,
) error {
	if err := uc.tx.Snapshot(ctx, productID, fn); err != nil {
		return uc.classify(op, err)
	}
	return nil
}

// classify deja pasar los errores de dominio y envuelve el resto en RepositoryError.
func (uc *LedgerUseCase) classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, domain.ErrConflict) {
		uc.log.Error().Str("op", op).Msg("reintentos agotados por conflicto de versión")
		return &domain.RepositoryError{Op: op, Err: err}
	}
	if domain.IsBusinessError(err) {
		return err
	}
	uc.log.Error().Err(err).Str("op", op).Msg("falla del almacenamiento")
	return &domain.RepositoryError{Op: op, Err: err}
}
