package entity

import "time"

// Stock es el agregado materializado de un producto: stock_actual versionado.
// Quantity siempre debe ser igual a la suma de los Delta de sus movimientos.
type Stock struct {
	ProductID    string
	Quantity     int64
	Version      int64 // se incrementa en cada commit que toca el producto
	LastSequence int64 // secuencia del último movimiento aplicado
	UpdatedAt    time.Time
}
