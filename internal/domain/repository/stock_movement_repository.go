package repository

import (
	"time"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros para listar movimientos.
type MovementFilter struct {
	ProductID string
	Kind      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository define el puerto de persistencia del ledger de movimientos.
// El ledger es append-only: no existen Update ni Delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	List(filter MovementFilter) ([]*entity.StockMovement, error)
	// LastByProduct devuelve el movimiento más reciente de un producto (nil si no hay).
	// Lo usa el endpoint de último movimiento por producto.
	LastByProduct(productID string) (*entity.StockMovement, error)
}
