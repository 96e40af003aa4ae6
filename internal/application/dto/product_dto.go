package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	StockMin     int64            `json:"stock_min"`
	StockMax     int64            `json:"stock_max"`
	InitialStock int64            `json:"initial_stock"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
}

// UpdateThresholdsRequest body para PUT /api/products/:id/thresholds.
type UpdateThresholdsRequest struct {
	StockMin int64 `json:"stock_min"`
	StockMax int64 `json:"stock_max"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	StockActual int64           `json:"stock_actual"`
	StockMin    int64           `json:"stock_min"`
	StockMax    int64           `json:"stock_max"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
