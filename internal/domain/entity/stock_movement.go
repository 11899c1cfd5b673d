package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementKindIn          = "in"           // entrada
	MovementKindOut         = "out"          // salida
	MovementKindAdjust      = "adjust"       // ajuste: fija la cantidad absoluta
	MovementKindTransferIn  = "transfer_in"  // entrada por traslado
	MovementKindTransferOut = "transfer_out" // salida por traslado
)

// ValidMovementKind indica si kind es uno de los tipos enumerados.
func ValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindIn, MovementKindOut, MovementKindAdjust,
		MovementKindTransferIn, MovementKindTransferOut:
		return true
	}
	return false
}

// OutboundKind indica si el tipo descuenta stock (salidas y traslados de salida).
func OutboundKind(kind string) bool {
	return kind == MovementKindOut || kind == MovementKindTransferOut
}

// StockMovement es una entrada inmutable del ledger de movimientos.
// Se crea exactamente una vez por operación exitosa, en la misma transacción
// que la actualización de Product.Quantity; nunca se actualiza ni se borra.
type StockMovement struct {
	ID             string
	ProductID      string
	Kind           string
	Quantity       decimal.Decimal // siempre positiva; en adjust es la cantidad objetivo
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	UnitCost       *decimal.Decimal // nil si no aplica
	TotalCost      *decimal.Decimal // round2(UnitCost * Quantity), nil si no hay costo
	Reason         string
	Reference      string
	CreatedAt      time.Time
	CreatedBy      string
}
