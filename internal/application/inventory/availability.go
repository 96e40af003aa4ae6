package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// Availability disponibilidad de un producto leída de una sola vista consistente.
type Availability struct {
	ProductID    string `json:"product_id"`
	StockActual  int64  `json:"stock_actual"`
	Reserved     int64  `json:"reserved"`
	Available    int64  `json:"available"`
	StockMin     int64  `json:"stock_min"`
	BelowMinimum bool   `json:"below_minimum"`
	Version      int64  `json:"version"`
}

// Available = stock_actual − Σ reservas ACTIVE. No toma el candado del producto.
func (uc *LedgerUseCase) Available(ctx context.Context, productID string) (*Availability, error) {
	if productID == "" {
		return nil, domain.ErrUnknownProduct
	}
	var out *Availability
	err := uc.snapshot(ctx, "available", productID, func(ctx context.Context, repos TxRepos) error {
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}
		stock, err := repos.Stock.Get(ctx, productID)
		if err != nil {
			return err
		}
		reserved, err := repos.Reservations.SumActive(ctx, productID)
		if err != nil {
			return err
		}
		available := inventory.Available(stock.Quantity, reserved)
		out = &Availability{
			ProductID:    productID,
			StockActual:  stock.Quantity,
			Reserved:     reserved,
			Available:    available,
			StockMin:     product.StockMin,
			BelowMinimum: product.StockMin > 0 && available < product.StockMin,
			Version:      stock.Version,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
