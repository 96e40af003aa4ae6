package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// StockActual es una proyección de solo lectura del agregado de stock (tabla stock); nunca se
// escribe desde aquí, solo vía movimientos registrados por el motor de inventario.
type Product struct {
	ID          string
	Code        string // código único, normalizado (mayúsculas, NFC)
	Name        string
	StockActual int64
	StockMin    int64           // umbral informativo (alerta de stock bajo)
	StockMax    int64           // 0 = sin máximo
	AverageCost decimal.Decimal // costo promedio ponderado (inicia en 0)
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
