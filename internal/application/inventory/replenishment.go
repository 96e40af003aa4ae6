package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ReplenishmentSuggestion sugerencia de reposición para un producto cuya disponibilidad
// está por debajo de su mínimo.
type ReplenishmentSuggestion struct {
	ProductID          string          `json:"product_id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	StockActual        int64           `json:"stock_actual"`
	Reserved           int64           `json:"reserved"`
	Available          int64           `json:"available"`
	StockMin           int64           `json:"stock_min"`
	IdealStock         int64           `json:"ideal_stock"`         // StockMax, o StockMin * 1.5 si no hay máximo
	SuggestedOrderQty  int64           `json:"suggested_order_qty"` // IdealStock - Available
	UnitCost           decimal.Decimal `json:"unit_cost"`           // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	Priority           int             `json:"priority"` // 1 = más urgente
}

// Replenishment devuelve los productos activos bajo su mínimo, ordenados por déficit relativo.
// Es una lectura pura sobre una vista consistente del catálogo.
func (uc *LedgerUseCase) Replenishment(ctx context.Context) ([]ReplenishmentSuggestion, error) {
	out := []ReplenishmentSuggestion{}
	err := uc.snapshot(ctx, "replenishment", "", func(ctx context.Context, repos TxRepos) error {
		products, err := repos.Products.List(ctx, repository.ProductQuery{})
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.StockMin <= 0 {
				continue
			}
			stock, err := repos.Stock.Get(ctx, p.ID)
			if err != nil {
				return err
			}
			reserved, err := repos.Reservations.SumActive(ctx, p.ID)
			if err != nil {
				return err
			}
			available := inventory.Available(stock.Quantity, reserved)
			if available >= p.StockMin {
				continue
			}

			ideal := p.StockMax
			if ideal <= 0 {
				ideal = decimal.NewFromInt(p.StockMin).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart()
			}
			qty := ideal - available
			if qty < 0 {
				qty = 0
			}
			out = append(out, ReplenishmentSuggestion{
				ProductID:          p.ID,
				Code:               p.Code,
				Name:               p.Name,
				StockActual:        stock.Quantity,
				Reserved:           reserved,
				Available:          available,
				StockMin:           p.StockMin,
				IdealStock:         ideal,
				SuggestedOrderQty:  qty,
				UnitCost:           p.AverageCost,
				EstimatedOrderCost: p.AverageCost.Mul(decimal.NewFromInt(qty)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Mayor déficit relativo primero; desempate por código.
	deficit := func(s ReplenishmentSuggestion) decimal.Decimal {
		return decimal.NewFromInt(s.StockMin - s.Available).Div(decimal.NewFromInt(s.StockMin))
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := deficit(out[i]), deficit(out[j])
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return out[i].Code < out[j].Code
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
