package entity

import "time"

// ReservationState estado de una reserva.
type ReservationState string

const (
	ReservationActive   ReservationState = "ACTIVE"
	ReservationReleased ReservationState = "RELEASED"
	ReservationConsumed ReservationState = "CONSUMED"
)

// Valid indica si el estado es uno de los soportados.
func (s ReservationState) Valid() bool {
	switch s {
	case ReservationActive, ReservationReleased, ReservationConsumed:
		return true
	}
	return false
}

// Reservation retiene cantidad de un producto para un holder (proyecto, orden de trabajo)
// sin mover stock físico hasta que se consume.
type Reservation struct {
	ID               string
	ProductID        string
	HolderID         string
	Quantity         int64
	State            ReservationState
	ConsumedQuantity int64
	MovementID       string // salida que la consumió
	CreatedBy        string
	CreatedAt        time.Time
	ClosedAt         *time.Time
	ClosedBy         string
	CloseReason      string
}

// IsActive indica si la reserva sigue reteniendo stock.
func (r *Reservation) IsActive() bool {
	return r.State == ReservationActive
}
