package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func TestValidateMovementQuantity(t *testing.T) {
	cases := []struct {
		name string
		kind entity.MovementKind
		qty  int64
		want error
	}{
		{"entrada positiva", entity.MovementEntry, 10, nil},
		{"entrada en cero", entity.MovementEntry, 0, domain.ErrInvalidQuantity},
		{"salida negativa", entity.MovementExit, -3, domain.ErrInvalidQuantity},
		{"ajuste a cero", entity.MovementAdjustment, 0, nil},
		{"ajuste negativo", entity.MovementAdjustment, -1, domain.ErrInvalidQuantity},
		{"tipo desconocido", entity.MovementKind("TRANSFER"), 5, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.ValidateMovementQuantity(tc.kind, tc.qty)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateProductWritable(t *testing.T) {
	assert.ErrorIs(t, inventory.ValidateProductWritable(nil), domain.ErrUnknownProduct)
	assert.ErrorIs(t, inventory.ValidateProductWritable(&entity.Product{Active: false}), domain.ErrProductInactive)
	assert.NoError(t, inventory.ValidateProductWritable(&entity.Product{Active: true}))
}

func TestCheckStockAfter_NegativoEsStockInsuficiente(t *testing.T) {
	err := inventory.CheckStockAfter("p-1", 50, 30, -20)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(50), stockErr.Requested)
	assert.Equal(t, int64(30), stockErr.Stock)

	assert.NoError(t, inventory.CheckStockAfter("p-1", 30, 30, 0))
}

func TestCheckReservationBound(t *testing.T) {
	// stock 100, reservas 30: una salida de 80 deja 20 < 30
	err := inventory.CheckReservationBound("p-1", 80, 20, 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailability)

	var availErr *domain.InsufficientAvailabilityError
	require.True(t, errors.As(err, &availErr))
	assert.Equal(t, int64(70), availErr.Available, "disponible antes de la salida")

	assert.NoError(t, inventory.CheckReservationBound("p-1", 70, 30, 30))
}

func TestCheckAvailability(t *testing.T) {
	assert.NoError(t, inventory.CheckAvailability("p-1", 70, 70))
	assert.ErrorIs(t, inventory.CheckAvailability("p-1", 80, 70), domain.ErrInsufficientAvailability)
}

func TestCloseReservation_TransicionUnica(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &entity.Reservation{ID: "r-1", Quantity: 5, State: entity.ReservationActive}

	require.NoError(t, inventory.CloseReservation(r, entity.ReservationReleased, now, "cancelada"))
	assert.Equal(t, entity.ReservationReleased, r.State)
	require.NotNil(t, r.ClosedAt)
	assert.Equal(t, now, *r.ClosedAt)
	assert.Equal(t, "cancelada", r.CloseReason)

	err := inventory.CloseReservation(r, entity.ReservationConsumed, now.Add(time.Minute), "otra vez")
	assert.ErrorIs(t, err, domain.ErrReservationAlreadyClosed)
	assert.Equal(t, entity.ReservationReleased, r.State, "un estado terminal no cambia")
	assert.Equal(t, now, *r.ClosedAt)
}

func TestCloseReservation_EstadoNoTerminal(t *testing.T) {
	r := &entity.Reservation{State: entity.ReservationActive}
	assert.ErrorIs(t, inventory.CloseReservation(r, entity.ReservationActive, time.Now(), ""), domain.ErrInvalidInput)
	assert.True(t, r.IsActive())
}

func TestCheckConsumption(t *testing.T) {
	r := &entity.Reservation{Quantity: 10, State: entity.ReservationActive}
	assert.NoError(t, inventory.CheckConsumption(r, 10))
	assert.NoError(t, inventory.CheckConsumption(r, 4))
	assert.ErrorIs(t, inventory.CheckConsumption(r, 11), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, inventory.CheckConsumption(r, 0), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, inventory.CheckConsumption(nil, 1), domain.ErrReservationNotFound)

	r.State = entity.ReservationConsumed
	assert.ErrorIs(t, inventory.CheckConsumption(r, 1), domain.ErrReservationAlreadyClosed)
}
