package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Quantity solo se escribe vía UpdateQuantity, desde el motor de movimientos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto para update (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	UpdateQuantity(productID string, quantity decimal.Decimal) error
	List(limit, offset int) ([]*entity.Product, error)
	// ListBreachingThreshold devuelve los productos activos cuya cantidad está
	// en o bajo su umbral (MinQuantity, o fallback cuando MinQuantity = 0).
	ListBreachingThreshold(ctx context.Context, fallback decimal.Decimal) ([]*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
}
