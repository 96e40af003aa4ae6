package entity

import "time"

// EventType tipo de evento de dominio emitido después de cada commit.
type EventType string

const (
	EventMovementRecorded    EventType = "movement.recorded"
	EventReservationCreated  EventType = "reservation.created"
	EventReservationReleased EventType = "reservation.released"
	EventReservationConsumed EventType = "reservation.consumed"
	EventStockReconciled     EventType = "stock.reconciled"
	EventStockLow            EventType = "stock.low"
)

// Event sobre {event_type, product_id, payload, timestamp} para suscriptores externos
// (refresco de UI, notificaciones, auditoría).
type Event struct {
	ID        string    `json:"event_id"`
	Type      EventType `json:"event_type"`
	ProductID string    `json:"product_id"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// StockLevelPayload payload de stock.low.
type StockLevelPayload struct {
	StockActual int64 `json:"stock_actual"`
	Reserved    int64 `json:"reserved"`
	Available   int64 `json:"available"`
	StockMin    int64 `json:"stock_min"`
}

// ReconciledPayload payload de stock.reconciled.
type ReconciledPayload struct {
	Aggregate  int64  `json:"aggregate"`
	Folded     int64  `json:"folded"`
	MovementID string `json:"movement_id"`
}

// MovementPayload payload de movement.recorded.
type MovementPayload struct {
	MovementID    string       `json:"movement_id"`
	Kind          MovementKind `json:"kind"`
	Quantity      int64        `json:"quantity"`
	Delta         int64        `json:"delta"`
	StockBefore   int64        `json:"stock_before"`
	StockAfter    int64        `json:"stock_after"`
	Reason        string       `json:"reason"`
	Reference     string       `json:"reference,omitempty"`
	ReservationID string       `json:"reservation_id,omitempty"`
	Actor         string       `json:"actor"`
	Sequence      int64        `json:"sequence"`
}

// NewMovementPayload construye el payload a partir del movimiento confirmado.
func NewMovementPayload(m *Movement) MovementPayload {
	return MovementPayload{
		MovementID:    m.ID,
		Kind:          m.Kind,
		Quantity:      m.Quantity,
		Delta:         m.Delta,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		Reason:        m.Reason,
		Reference:     m.Reference,
		ReservationID: m.ReservationID,
		Actor:         m.Actor,
		Sequence:      m.Sequence,
	}
}

// ReservationPayload payload de reservation.*.
type ReservationPayload struct {
	ReservationID    string           `json:"reservation_id"`
	HolderID         string           `json:"holder_id"`
	Quantity         int64            `json:"quantity"`
	State            ReservationState `json:"state"`
	ConsumedQuantity int64            `json:"consumed_quantity,omitempty"`
	MovementID       string           `json:"movement_id,omitempty"`
	CloseReason      string           `json:"close_reason,omitempty"`
	Actor            string           `json:"actor"`
}

// NewReservationPayload construye el payload; actor es quien ejecutó la transición.
func NewReservationPayload(r *Reservation, actor string) ReservationPayload {
	return ReservationPayload{
		ReservationID:    r.ID,
		HolderID:         r.HolderID,
		Quantity:         r.Quantity,
		State:            r.State,
		ConsumedQuantity: r.ConsumedQuantity,
		MovementID:       r.MovementID,
		CloseReason:      r.CloseReason,
		Actor:            actor,
	}
}
