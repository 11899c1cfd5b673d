package repository

import (
	"context"
	"time"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// AlertFilter filtros para listar alertas.
type AlertFilter struct {
	ProductID string
	Kind      string
	State     string
	Limit     int
	Offset    int
}

// StockAlertRepository define el puerto de persistencia para alertas de stock.
// El reconciliador crea y resuelve; las transiciones manuales llegan por UpdateState.
// Nunca se borran alertas desde este subsistema.
type StockAlertRepository interface {
	// Create inserta la alerta; devuelve domain.ErrDuplicate si ya existe una
	// alerta open del mismo (producto, tipo) — índice único parcial.
	Create(alert *entity.StockAlert) error
	GetByID(id string) (*entity.StockAlert, error)
	List(filter AlertFilter) ([]*entity.StockAlert, error)
	ListOpenByProduct(productID string, kinds ...string) ([]*entity.StockAlert, error)
	// ListProductIDsWithOpen devuelve los IDs de producto con al menos una alerta
	// open de los tipos dados (candidatos a recuperación del reconciliador).
	ListProductIDsWithOpen(ctx context.Context, kinds ...string) ([]string, error)
	// MarkResolved pasa una alerta open a resolved y estampa resolvedAt.
	MarkResolved(id string, resolvedAt time.Time) error
	// UpdateState aplica una transición manual open -> read|resolved|ignored.
	// Devuelve domain.ErrConflict si la alerta ya no está open.
	UpdateState(id string, state string, at time.Time) error
}
