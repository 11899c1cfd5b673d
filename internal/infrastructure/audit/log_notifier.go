package audit

import (
	"context"

	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/pkg/logger"
)

var _ ledger.AuditNotifier = (*LogNotifier)(nil)

// LogNotifier implementación del sink de auditoría sobre el log estructurado.
// El sink real es un colaborador externo; aquí solo registramos el evento.
// Best-effort: nunca devuelve error al caller.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// MovementApplied registra un movimiento confirmado.
func (n *LogNotifier) MovementApplied(_ context.Context, m *entity.StockMovement) {
	n.log.Info().
		Str("event", "movement_applied").
		Str("movement_id", m.ID).
		Str("product_id", m.ProductID).
		Str("kind", m.Kind).
		Str("quantity", m.Quantity.String()).
		Str("quantity_before", m.QuantityBefore.String()).
		Str("quantity_after", m.QuantityAfter.String()).
		Msg("auditoría: movimiento aplicado")
}

// AlertCreated registra una alerta creada por el reconciliador.
func (n *LogNotifier) AlertCreated(_ context.Context, a *entity.StockAlert) {
	n.log.Info().
		Str("event", "alert_created").
		Str("alert_id", a.ID).
		Str("product_id", a.ProductID).
		Str("kind", a.Kind).
		Str("priority", a.Priority).
		Msg("auditoría: alerta creada")
}

// AlertResolved registra una alerta resuelta automáticamente.
func (n *LogNotifier) AlertResolved(_ context.Context, a *entity.StockAlert) {
	n.log.Info().
		Str("event", "alert_resolved").
		Str("alert_id", a.ID).
		Str("product_id", a.ProductID).
		Str("kind", a.Kind).
		Msg("auditoría: alerta resuelta")
}
