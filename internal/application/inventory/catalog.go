package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// CreateProductInput entrada para dar de alta un producto con su stock inicial.
type CreateProductInput struct {
	Code         string
	Name         string
	StockMin     int64
	StockMax     int64
	InitialStock int64
	UnitCost     *decimal.Decimal
	Actor        string
}

func validateThresholds(min, max int64) error {
	if min < 0 || max < 0 || (max > 0 && min > max) {
		return domain.ErrInvalidInput
	}
	return nil
}

// CreateProduct crea el producto, su agregado de stock y, si hay stock inicial, la ENTRY
// "initial stock", todo en la misma unidad atómica. Código repetido = ErrDuplicate.
func (uc *LedgerUseCase) CreateProduct(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	code := inventory.NormalizeCode(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateThresholds(in.StockMin, in.StockMax); err != nil {
		return nil, err
	}
	if in.InitialStock < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	id := uuid.New().String()
	var product *entity.Product
	err := uc.mutate(ctx, "create_product", id, func(ctx context.Context, repos TxRepos, st *txState) error {
		existing, err := repos.Products.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		product = &entity.Product{
			ID:          id,
			Code:        code,
			Name:        name,
			StockMin:    in.StockMin,
			StockMax:    in.StockMax,
			AverageCost: decimal.Zero,
			Active:      true,
			CreatedAt:   st.now,
			UpdatedAt:   st.now,
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}

		if in.InitialStock == 0 {
			stock := &entity.Stock{ProductID: id, Version: 1, UpdatedAt: st.now}
			return repos.Stock.Upsert(ctx, stock, 0)
		}
		mov, err := uc.applyMovement(ctx, repos, st, movementRequest{input: RecordMovementInput{
			ProductID: id,
			Kind:      entity.MovementEntry,
			Quantity:  in.InitialStock,
			UnitCost:  in.UnitCost,
			Reason:    entity.ReasonInitialStock,
			Actor:     in.Actor,
		}})
		if err != nil {
			return err
		}
		product.StockActual = mov.StockAfter
		if in.UnitCost != nil {
			product.AverageCost = *in.UnitCost
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", product.ID).Str("code", product.Code).Int64("stock", product.StockActual).
		Str("actor", in.Actor).Msg("producto creado")
	return product, nil
}

// GetProduct obtiene un producto por ID con su stock actual.
func (uc *LedgerUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := uc.snapshot(ctx, "get_product", id, func(ctx context.Context, repos TxRepos) error {
		p, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrUnknownProduct
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetProductByCode obtiene un producto por código (se normaliza antes de buscar).
func (uc *LedgerUseCase) GetProductByCode(ctx context.Context, code string) (*entity.Product, error) {
	code = inventory.NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrUnknownProduct
	}
	var out *entity.Product
	err := uc.snapshot(ctx, "get_product_by_code", "", func(ctx context.Context, repos TxRepos) error {
		p, err := repos.Products.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrUnknownProduct
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts lista el catálogo. Limit 0 = todos.
func (uc *LedgerUseCase) ListProducts(ctx context.Context, q repository.ProductQuery) ([]*entity.Product, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	var out []*entity.Product
	err := uc.snapshot(ctx, "list_products", "", func(ctx context.Context, repos TxRepos) error {
		var err error
		out, err = repos.Products.List(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateThresholds cambia los umbrales informativos min/max (max 0 = sin máximo).
func (uc *LedgerUseCase) UpdateThresholds(ctx context.Context, id string, min, max int64, actor string) (*entity.Product, error) {
	if id == "" {
		return nil, domain.ErrUnknownProduct
	}
	if err := validateThresholds(min, max); err != nil {
		return nil, err
	}
	var out *entity.Product
	err := uc.mutate(ctx, "update_thresholds", id, func(ctx context.Context, repos TxRepos, st *txState) error {
		p, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrUnknownProduct
		}
		if err := repos.Products.UpdateThresholds(ctx, id, min, max, st.now); err != nil {
			return err
		}
		p.StockMin, p.StockMax, p.UpdatedAt = min, max, st.now
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Int64("stock_min", min).Int64("stock_max", max).Str("actor", actor).
		Msg("umbrales actualizados")
	return out, nil
}

// DeactivateProduct desactiva el producto (nunca se borra). Rechaza si tiene reservas activas.
// Desactivar un producto ya inactivo no hace nada.
func (uc *LedgerUseCase) DeactivateProduct(ctx context.Context, id, actor string) error {
	if id == "" {
		return domain.ErrUnknownProduct
	}
	changed := false
	err := uc.mutate(ctx, "deactivate_product", id, func(ctx context.Context, repos TxRepos, st *txState) error {
		p, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrUnknownProduct
		}
		if !p.Active {
			return nil
		}
		reserved, err := repos.Reservations.SumActive(ctx, id)
		if err != nil {
			return err
		}
		if reserved > 0 {
			return domain.ErrActiveReservations
		}
		changed = true
		return repos.Products.SetActive(ctx, id, false, st.now)
	})
	if err != nil {
		return err
	}
	if changed {
		uc.log.Info().Str("product_id", id).Str("actor", actor).Msg("producto desactivado")
	}
	return nil
}
