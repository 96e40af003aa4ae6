// Package memory implementa el almacenamiento durable del motor de inventario en memoria.
// Sirve para tests y para ejecutar la API sin PostgreSQL (LEDGER_STORE=memory).
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

var errReadOnly = errors.New("memory: transacción de solo lectura")

// Store estado confirmado. Las escrituras de una transacción se acumulan aparte y se aplican
// juntas en el commit, de modo que un rollback es simplemente descartarlas.
type Store struct {
	mu           sync.RWMutex
	products     map[string]*entity.Product
	codes        map[string]string // code -> productID
	stock        map[string]*entity.Stock
	movements    map[string][]*entity.Movement
	reservations map[string]*entity.Reservation

	rowLocks *inventory.KeyedLocker
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		products:     make(map[string]*entity.Product),
		codes:        make(map[string]string),
		stock:        make(map[string]*entity.Stock),
		movements:    make(map[string][]*entity.Movement),
		reservations: make(map[string]*entity.Reservation),
		rowLocks:     inventory.NewKeyedLocker(),
	}
}

// Run ejecuta fn en una transacción. Con productID no vacío las transacciones sobre el mismo
// producto se serializan (equivalente al bloqueo de fila).
func (s *Store) Run(ctx context.Context, productID string, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if productID != "" {
		unlock, err := s.rowLocks.Lock(ctx, productID)
		if err != nil {
			return err
		}
		defer unlock()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t := newTx(s, false)
	if err := fn(ctx, t.repos()); err != nil {
		return err
	}
	return t.commit()
}

// LockedRows número de productos con candado de fila tomado o en espera.
func (s *Store) LockedRows() int {
	return s.rowLocks.Len()
}

// Snapshot ejecuta fn con el estado confirmado congelado; cualquier escritura falla.
func (s *Store) Snapshot(ctx context.Context, _ string, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, newTx(s, true).repos())
}

// tx escrituras pendientes de una transacción.
type tx struct {
	s        *Store
	readOnly bool

	products        map[string]*entity.Product
	newCodes        map[string]string
	stock           map[string]*entity.Stock
	stockBase       map[string]int64 // versión confirmada esperada en el commit
	movements       []*entity.Movement
	reservations    map[string]*entity.Reservation
	newReservations map[string]bool
}

func newTx(s *Store, readOnly bool) *tx {
	return &tx{
		s:               s,
		readOnly:        readOnly,
		products:        make(map[string]*entity.Product),
		newCodes:        make(map[string]string),
		stock:           make(map[string]*entity.Stock),
		stockBase:       make(map[string]int64),
		reservations:    make(map[string]*entity.Reservation),
		newReservations: make(map[string]bool),
	}
}

func (t *tx) repos() inventory.TxRepos {
	return inventory.TxRepos{
		Products:     &productRepo{t: t},
		Stock:        &stockRepo{t: t},
		Movements:    &movementRepo{t: t},
		Reservations: &reservationRepo{t: t},
	}
}

// read ejecuta f con el estado confirmado protegido. En Snapshot el candado ya está tomado.
func (t *tx) read(f func()) {
	if t.readOnly {
		f()
		return
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	f()
}

func (t *tx) write() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *tx) empty() bool {
	return len(t.products) == 0 && len(t.stock) == 0 && len(t.movements) == 0 && len(t.reservations) == 0
}

// commit valida contra el estado confirmado y aplica todas las escrituras de una vez.
func (t *tx) commit() error {
	if t.empty() {
		return nil
	}
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, id := range t.newCodes {
		if other, ok := s.codes[code]; ok && other != id {
			return domain.ErrDuplicate
		}
	}
	for pid, base := range t.stockBase {
		var current int64
		if st, ok := s.stock[pid]; ok {
			current = st.Version
		}
		if current != base {
			return domain.ErrConflict
		}
	}
	for id := range t.reservations {
		if t.newReservations[id] {
			continue
		}
		if base, ok := s.reservations[id]; !ok || !base.IsActive() {
			return domain.ErrReservationAlreadyClosed
		}
	}

	for id, p := range t.products {
		s.products[id] = p
		s.codes[p.Code] = id
	}
	for pid, st := range t.stock {
		s.stock[pid] = st
	}
	for _, m := range t.movements {
		s.movements[m.ProductID] = append(s.movements[m.ProductID], m)
	}
	for id, r := range t.reservations {
		s.reservations[id] = r
	}
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
