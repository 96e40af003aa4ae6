package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, s *memory.Store, id, code string) {
	t.Helper()
	err := s.Run(context.Background(), id, func(ctx context.Context, repos inventory.TxRepos) error {
		if err := repos.Products.Create(ctx, &entity.Product{ID: id, Code: code, Name: code, Active: true, CreatedAt: t0, UpdatedAt: t0}); err != nil {
			return err
		}
		return repos.Stock.Upsert(ctx, &entity.Stock{ProductID: id, Version: 1, UpdatedAt: t0}, 0)
	})
	require.NoError(t, err)
}

func TestStore_RollbackDescartaEscrituras(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", "A-1")
	boom := errors.New("boom")

	err := s.Run(context.Background(), "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		require.NoError(t, repos.Movements.Append(ctx, &entity.Movement{ID: "m1", ProductID: "p1", Kind: entity.MovementEntry, Quantity: 5, Delta: 5, Sequence: 1}))
		require.NoError(t, repos.Stock.Upsert(ctx, &entity.Stock{ProductID: "p1", Quantity: 5, Version: 2, LastSequence: 1}, 1))

		// Dentro de la tx se ven las escrituras pendientes.
		st, err := repos.Stock.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(5), st.Quantity)
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.Snapshot(context.Background(), "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		st, err := repos.Stock.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), st.Quantity)
		assert.Equal(t, int64(1), st.Version)
		movs, err := repos.Movements.ListByProduct(ctx, repository.MovementQuery{ProductID: "p1"})
		require.NoError(t, err)
		assert.Empty(t, movs)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_UpsertConVersionIncorrecta(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", "A-1")

	err := s.Run(context.Background(), "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		return repos.Stock.Upsert(ctx, &entity.Stock{ProductID: "p1", Quantity: 3, Version: 5}, 4)
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_SnapshotEsSoloLectura(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", "A-1")

	err := s.Snapshot(context.Background(), "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		return repos.Movements.Append(ctx, &entity.Movement{ID: "m1", ProductID: "p1"})
	})
	assert.Error(t, err)
}

func TestStore_CodigoDuplicado(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", "A-1")

	err := s.Run(context.Background(), "p2", func(ctx context.Context, repos inventory.TxRepos) error {
		return repos.Products.Create(ctx, &entity.Product{ID: "p2", Code: "A-1", Active: true})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStore_ReservasYProyeccionDeStock(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", "A-1")
	ctx := context.Background()

	err := s.Run(ctx, "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		if err := repos.Stock.Upsert(ctx, &entity.Stock{ProductID: "p1", Quantity: 10, Version: 2}, 1); err != nil {
			return err
		}
		for i, q := range []int64{3, 4} {
			r := &entity.Reservation{
				ID: []string{"r1", "r2"}[i], ProductID: "p1", HolderID: "obra-7",
				Quantity: q, State: entity.ReservationActive, CreatedAt: t0.Add(time.Duration(i) * time.Minute),
			}
			if err := repos.Reservations.Create(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.Run(ctx, "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		r, err := repos.Reservations.GetForUpdate(ctx, "r1")
		require.NoError(t, err)
		r.State = entity.ReservationReleased
		require.NoError(t, repos.Reservations.Close(ctx, r))
		// Un segundo cierre en la misma tx ya no encuentra la reserva ACTIVE.
		assert.ErrorIs(t, repos.Reservations.Close(ctx, r), domain.ErrReservationAlreadyClosed)
		return nil
	})
	require.NoError(t, err)

	err = s.Snapshot(ctx, "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		p, err := repos.Products.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(10), p.StockActual)

		sum, err := repos.Reservations.SumActive(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(4), sum)

		active, err := repos.Reservations.List(ctx, repository.ReservationQuery{ProductID: "p1", State: entity.ReservationActive})
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "r2", active[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ListByProductFiltraYPagina(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", "A-1")
	ctx := context.Background()

	err := s.Run(ctx, "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		kinds := []entity.MovementKind{entity.MovementEntry, entity.MovementExit, entity.MovementEntry, entity.MovementAdjustment}
		for i, k := range kinds {
			m := &entity.Movement{
				ID: string(rune('a' + i)), ProductID: "p1", Kind: k, Sequence: int64(i + 1),
				CreatedAt: t0.Add(time.Duration(i) * time.Hour),
			}
			if err := repos.Movements.Append(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	_ = s.Snapshot(ctx, "p1", func(ctx context.Context, repos inventory.TxRepos) error {
		entries, err := repos.Movements.ListByProduct(ctx, repository.MovementQuery{ProductID: "p1", Kind: entity.MovementEntry})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(3), entries[0].Sequence, "más recientes primero")

		from := t0.Add(time.Hour)
		page, err := repos.Movements.ListByProduct(ctx, repository.MovementQuery{ProductID: "p1", From: &from, Ascending: true, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, []int64{2, 3}, []int64{page[0].Sequence, page[1].Sequence})
		return nil
	})
}

func TestStore_CandadosDeFilaNoQuedanTrasProductosDesconocidos(t *testing.T) {
	s := memory.NewStore()
	uc := inventory.NewLedgerUseCase(s)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := uc.Reconcile(ctx, fmt.Sprintf("desconocido-%d", i), "tester")
		require.ErrorIs(t, err, domain.ErrUnknownProduct)
	}
	assert.Equal(t, 0, s.LockedRows())

	seedProduct(t, s, "p-1", "P1")
	assert.Equal(t, 0, s.LockedRows())
}

func TestStore_RunCanceladoNoEjecuta(t *testing.T) {
	s := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, "p-1", func(context.Context, inventory.TxRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.Equal(t, 0, s.LockedRows())
}
