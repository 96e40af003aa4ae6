package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de inventario.
type MovementKind string

const (
	MovementEntry      MovementKind = "ENTRY"      // entrada
	MovementExit       MovementKind = "EXIT"       // salida
	MovementAdjustment MovementKind = "ADJUSTMENT" // ajuste a valor absoluto
)

// Valid indica si el tipo es uno de los soportados.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntry, MovementExit, MovementAdjustment:
		return true
	}
	return false
}

// Motivos estándar usados por el motor y sus herramientas.
const (
	ReasonInitialStock           = "initial stock"
	ReasonReconciliation         = "reconciliation"
	ReasonReservationConsumption = "reservation consumption"
	ReasonPhysicalCountImport    = "physical count import"
)

// Movement registro inmutable (append-only) de un cambio de stock.
// Para ENTRY/EXIT Quantity es la magnitud positiva; para ADJUSTMENT es el valor absoluto objetivo.
// Delta es el efecto con signo sobre el stock en todos los casos.
type Movement struct {
	ID            string
	ProductID     string
	Kind          MovementKind
	Quantity      int64
	Delta         int64
	StockBefore   int64
	StockAfter    int64
	UnitCost      *decimal.Decimal // solo entradas
	Reason        string
	Reference     string // evento de negocio que lo originó (compra, proyecto, etc.)
	ReservationID string // presente cuando la salida consume una reserva
	Actor         string
	Sequence      int64 // orden total por producto
	CreatedAt     time.Time
}
