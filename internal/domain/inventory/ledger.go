package inventory

import (
	"math"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Delta calcula el efecto con signo de un movimiento sobre el stock actual.
// Para ADJUSTMENT quantity es el valor absoluto objetivo. Una ENTRY que desbordaría el
// stock es una cantidad inválida.
func Delta(kind entity.MovementKind, quantity, stockActual int64) (int64, error) {
	switch kind {
	case entity.MovementEntry:
		if quantity > math.MaxInt64-stockActual {
			return 0, domain.ErrInvalidQuantity
		}
		return quantity, nil
	case entity.MovementExit:
		return -quantity, nil
	case entity.MovementAdjustment:
		return quantity - stockActual, nil
	}
	return 0, domain.ErrInvalidInput
}

// Fold reconstruye stock_actual sumando los Delta del historial en orden de secuencia.
// Devuelve también la última secuencia vista.
func Fold(movements []*entity.Movement) (stock int64, lastSequence int64) {
	ordered := make([]*entity.Movement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Sequence < ordered[j].Sequence })
	for _, m := range ordered {
		stock += m.Delta
		lastSequence = m.Sequence
	}
	return stock, lastSequence
}

// Available = stock_actual − Σ reservas activas.
func Available(stockActual, reserved int64) int64 {
	return stockActual - reserved
}

// CrossedBelowMinimum indica si la disponibilidad acaba de cruzar el umbral mínimo hacia abajo.
// Un mínimo en cero desactiva la alerta.
func CrossedBelowMinimum(stockMin, availableBefore, availableAfter int64) bool {
	if stockMin <= 0 {
		return false
	}
	return availableAfter < stockMin && availableBefore >= stockMin
}
