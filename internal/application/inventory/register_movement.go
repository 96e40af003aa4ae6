package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ParseMovementKind traduce el tipo recibido por la API. Acepta IN/OUT como alias de ENTRY/EXIT.
func ParseMovementKind(s string) (entity.MovementKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ENTRY", "IN":
		return entity.MovementEntry, nil
	case "EXIT", "OUT":
		return entity.MovementExit, nil
	case "ADJUSTMENT", "ADJUST":
		return entity.MovementAdjustment, nil
	}
	return "", domain.ErrInvalidInput
}

// RegisterMovement registra un movimiento a partir del body HTTP; actor viene del token.
func (uc *LedgerUseCase) RegisterMovement(ctx context.Context, req dto.RegisterMovementRequest, actor string) (*MovementResult, error) {
	kind, err := ParseMovementKind(req.Type)
	if err != nil {
		return nil, err
	}
	return uc.RecordMovement(ctx, RecordMovementInput{
		ProductID: strings.TrimSpace(req.ProductID),
		Kind:      kind,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		Reason:    strings.TrimSpace(req.Reason),
		Reference: strings.TrimSpace(req.Reference),
		Actor:     actor,
	})
}
