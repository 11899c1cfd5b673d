package ledger

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de movimientos:
// la actualización de cantidad y el registro del movimiento se confirman juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}

// AuditNotifier es el colaborador de auditoría externo. Se notifica después del
// commit, fuera de la transacción (best-effort): un fallo del sink no revierte
// ni falla el movimiento.
type AuditNotifier interface {
	MovementApplied(ctx context.Context, movement *entity.StockMovement)
	AlertCreated(ctx context.Context, alert *entity.StockAlert)
	AlertResolved(ctx context.Context, alert *entity.StockAlert)
}
