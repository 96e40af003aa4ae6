package usecase

import (
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ToProductResponse convierte la entidad en su representación HTTP.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		StockActual: p.StockActual,
		StockMin:    p.StockMin,
		StockMax:    p.StockMax,
		AverageCost: p.AverageCost,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          string(m.Kind),
		Quantity:      m.Quantity,
		Delta:         m.Delta,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		UnitCost:      m.UnitCost,
		Reason:        m.Reason,
		Reference:     m.Reference,
		ReservationID: m.ReservationID,
		Actor:         m.Actor,
		Sequence:      m.Sequence,
		CreatedAt:     m.CreatedAt,
	}
}

func ToMovementResult(r *inventory.MovementResult) dto.MovementResultResponse {
	return dto.MovementResultResponse{Movement: ToMovementResponse(r.Movement), NewStock: r.NewStock}
}

func ToReservationResponse(r *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:               r.ID,
		ProductID:        r.ProductID,
		HolderID:         r.HolderID,
		Quantity:         r.Quantity,
		State:            string(r.State),
		ConsumedQuantity: r.ConsumedQuantity,
		MovementID:       r.MovementID,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		ClosedAt:         r.ClosedAt,
		ClosedBy:         r.ClosedBy,
		CloseReason:      r.CloseReason,
	}
}
