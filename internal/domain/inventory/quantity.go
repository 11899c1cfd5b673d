package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// ResolveQuantity calcula la nueva cantidad según el tipo de movimiento (servicio de dominio).
//   in / transfer_in:   before + quantity
//   out / transfer_out: before - quantity
//   adjust:             quantity (cantidad absoluta objetivo, no delta)
//
// adjust NO es un delta: 100 con adjust 42 da 42. Quantity debe ser > 0
// también en adjust (un ajuste a cero requiere una salida explícita).
func ResolveQuantity(kind string, before, quantity decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case entity.MovementKindIn, entity.MovementKindTransferIn:
		return before.Add(quantity), nil
	case entity.MovementKindOut, entity.MovementKindTransferOut:
		return before.Sub(quantity), nil
	case entity.MovementKindAdjust:
		return quantity, nil
	}
	return decimal.Zero, domain.ErrInvalidInput
}

// TotalCost calcula el costo total redondeado a 2 decimales.
func TotalCost(unitCost, quantity decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(quantity).Round(2)
}

// BreachKind clasifica el incumplimiento de umbral de un producto:
//   quantity <= 0                                  -> critical_stock
//   minQuantity > 0 y quantity <= minQuantity      -> low_stock
//   minQuantity == 0 y quantity <= fallback        -> low_stock
// Devuelve "" si la cantidad está por encima del umbral aplicable.
func BreachKind(quantity, minQuantity, fallback decimal.Decimal) string {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return entity.AlertKindCriticalStock
	}
	threshold := minQuantity
	if minQuantity.IsZero() {
		threshold = fallback
	}
	if quantity.LessThanOrEqual(threshold) {
		return entity.AlertKindLowStock
	}
	return ""
}

// ClearsBreach indica si la cantidad actual libera una alerta abierta del tipo dado:
// critical_stock se libera con quantity > 0; low_stock con quantity por encima
// del umbral aplicable (propio o fallback).
func ClearsBreach(alertKind string, quantity, minQuantity, fallback decimal.Decimal) bool {
	switch alertKind {
	case entity.AlertKindCriticalStock:
		return quantity.GreaterThan(decimal.Zero)
	case entity.AlertKindLowStock:
		threshold := minQuantity
		if minQuantity.IsZero() {
			threshold = fallback
		}
		return quantity.GreaterThan(threshold)
	}
	return false
}
