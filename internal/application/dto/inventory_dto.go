package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Type acepta ENTRY/EXIT/ADJUSTMENT y los alias IN/OUT.
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id"`
	Type      string           `json:"type"`
	Quantity  int64            `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason"`
	Reference string           `json:"reference,omitempty"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	Type          string           `json:"type"`
	Quantity      int64            `json:"quantity"`
	Delta         int64            `json:"delta"`
	StockBefore   int64            `json:"stock_before"`
	StockAfter    int64            `json:"stock_after"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason        string           `json:"reason"`
	Reference     string           `json:"reference,omitempty"`
	ReservationID string           `json:"reservation_id,omitempty"`
	Actor         string           `json:"actor"`
	Sequence      int64            `json:"sequence"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateReservationRequest body para POST /api/inventory/reservations.
type CreateReservationRequest struct {
	ProductID string `json:"product_id"`
	HolderID  string `json:"holder_id"`
	Quantity  int64  `json:"quantity"`
}

// ReleaseReservationRequest body para POST /api/inventory/reservations/:id/release.
type ReleaseReservationRequest struct {
	Reason string `json:"reason"`
}

// ConsumeReservationRequest body para POST /api/inventory/reservations/:id/consume.
type ConsumeReservationRequest struct {
	Quantity int64 `json:"quantity"`
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	HolderID         string     `json:"holder_id"`
	Quantity         int64      `json:"quantity"`
	State            string     `json:"state"`
	ConsumedQuantity int64      `json:"consumed_quantity,omitempty"`
	MovementID       string     `json:"movement_id,omitempty"`
	CreatedBy        string     `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	ClosedBy         string     `json:"closed_by,omitempty"`
	CloseReason      string     `json:"close_reason,omitempty"`
}

// ReservationListResponse lista paginada de reservas.
type ReservationListResponse struct {
	Items []ReservationResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// MovementResultResponse movimiento registrado y stock resultante.
type MovementResultResponse struct {
	Movement MovementResponse `json:"movement"`
	NewStock int64            `json:"new_stock"`
}
