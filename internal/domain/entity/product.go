package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario.
// Quantity solo la muta el motor de movimientos (ledger); el CRUD de productos
// nunca la toca. MinQuantity en 0 significa "usar el umbral global de stock bajo".
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta; costo por defecto en salidas
	Quantity    decimal.Decimal // stock actual, nunca negativo
	MinQuantity decimal.Decimal // umbral propio de stock bajo (0 = usar fallback)
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
