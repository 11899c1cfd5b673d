package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/inventory"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/infrastructure/metrics"
	"github.com/invorya/stock-ledger/pkg/logger"
)

// stockAlertKinds tipos de alerta que el reconciliador deriva del stock.
// no_movement y expiry existen en el enum pero los generan otros procesos.
var stockAlertKinds = []string{entity.AlertKindLowStock, entity.AlertKindCriticalStock}

// Reconciler ejecuta una pasada de reconciliación de alertas: para cada producto
// candidato corre primero la recuperación (resolver alertas abiertas cuya
// condición ya no se cumple) y luego la creación (abrir la alerta más severa
// aplicable, con dedupe por alerta abierta del mismo tipo).
type Reconciler struct {
	productRepo repository.ProductRepository
	alertRepo   repository.StockAlertRepository
	audit       ledger.AuditNotifier
	fallback    decimal.Decimal // umbral de stock bajo cuando MinQuantity = 0
	log         *logger.Logger
}

// NewReconciler construye el reconciliador. audit puede ser nil.
func NewReconciler(
	productRepo repository.ProductRepository,
	alertRepo repository.StockAlertRepository,
	audit ledger.AuditNotifier,
	fallback decimal.Decimal,
	log *logger.Logger,
) *Reconciler {
	return &Reconciler{
		productRepo: productRepo,
		alertRepo:   alertRepo,
		audit:       audit,
		fallback:    fallback,
		log:         log,
	}
}

// Reconcile ejecuta una pasada completa. El conjunto candidato es la unión de
// los productos que incumplen umbral y los que tienen alertas de stock abiertas
// (estos últimos incluyen inactivos, para poder cerrarlas). Un error al armar
// el conjunto candidato aborta la pasada; los errores por producto se registran
// y no detienen al resto.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	start := time.Now()
	metrics.ReconcileRuns.Inc()

	breaching, err := r.productRepo.ListBreachingThreshold(ctx, r.fallback)
	if err != nil {
		return fmt.Errorf("listar productos bajo umbral: %w", err)
	}
	candidates := make(map[string]*entity.Product, len(breaching))
	for _, p := range breaching {
		candidates[p.ID] = p
	}

	withOpen, err := r.alertRepo.ListProductIDsWithOpen(ctx, stockAlertKinds...)
	if err != nil {
		return fmt.Errorf("listar productos con alertas abiertas: %w", err)
	}
	var missing []string
	for _, id := range withOpen {
		if _, ok := candidates[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		extra, err := r.productRepo.ListByIDs(ctx, missing)
		if err != nil {
			return fmt.Errorf("cargar productos con alertas abiertas: %w", err)
		}
		for _, p := range extra {
			candidates[p.ID] = p
		}
	}

	var failed int
	for _, p := range candidates {
		if err := r.reconcileProduct(ctx, p); err != nil {
			failed++
			r.log.Error().Err(err).
				Str("product_id", p.ID).
				Str("sku", p.SKU).
				Msg("reconciliación de producto fallida")
		}
	}

	metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	r.log.Info().
		Int("candidates", len(candidates)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("pasada de reconciliación completada")
	return nil
}

// reconcileProduct aplica recuperación y luego creación para un producto.
// La lectura de la cantidad es una foto puntual: si corre en paralelo con un
// movimiento, la siguiente pasada reconcilia con el valor actualizado.
func (r *Reconciler) reconcileProduct(ctx context.Context, p *entity.Product) error {
	open, err := r.alertRepo.ListOpenByProduct(p.ID, stockAlertKinds...)
	if err != nil {
		return err
	}

	// 1. Recuperación: resolver las alertas abiertas cuya condición ya se libera.
	stillOpen := make(map[string]bool, len(open))
	for _, a := range open {
		if !inventory.ClearsBreach(a.Kind, p.Quantity, p.MinQuantity, r.fallback) {
			stillOpen[a.Kind] = true
			continue
		}
		now := time.Now()
		if err := r.alertRepo.MarkResolved(a.ID, now); err != nil {
			return err
		}
		metrics.AlertsResolved.WithLabelValues(a.Kind).Inc()
		if r.audit != nil {
			resolved := *a
			resolved.State = entity.AlertStateResolved
			resolved.ResolvedAt = &now
			go r.audit.AlertResolved(context.Background(), &resolved)
		}
	}

	// 2. Creación: solo productos activos generan alertas nuevas.
	if !p.Active {
		return nil
	}
	kind := inventory.BreachKind(p.Quantity, p.MinQuantity, r.fallback)
	if kind == "" {
		return nil
	}
	if stillOpen[kind] {
		// Dedupe: ya hay una alerta abierta de este tipo.
		return nil
	}

	alert := buildAlert(p, kind, r.fallback)
	if err := r.alertRepo.Create(alert); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Otra corrida (disparo manual) la creó entre la lectura y el insert;
			// el índice único parcial la dedupe por nosotros.
			return nil
		}
		return err
	}
	metrics.AlertsCreated.WithLabelValues(kind).Inc()
	if r.audit != nil {
		go r.audit.AlertCreated(context.Background(), alert)
	}
	return nil
}

// alertMetadata snapshot al momento del disparo.
type alertMetadata struct {
	Quantity  decimal.Decimal `json:"quantity"`
	Threshold decimal.Decimal `json:"threshold"`
	Source    string          `json:"source"`
}

// buildAlert arma la alerta más severa aplicable con título legible y snapshot.
func buildAlert(p *entity.Product, kind string, fallback decimal.Decimal) *entity.StockAlert {
	threshold := p.MinQuantity
	if threshold.IsZero() {
		threshold = fallback
	}

	var title, description, priority string
	switch kind {
	case entity.AlertKindCriticalStock:
		title = fmt.Sprintf("Stock agotado: %s", p.Name)
		description = fmt.Sprintf("El producto %s quedó sin existencias (%s unidades)", p.SKU, p.Quantity.String())
		priority = entity.AlertPriorityHigh
		threshold = decimal.Zero
	default:
		title = fmt.Sprintf("Stock bajo: %s", p.Name)
		description = fmt.Sprintf("El producto %s tiene %s unidades (umbral %s)", p.SKU, p.Quantity.String(), threshold.String())
		priority = entity.AlertPriorityMedium
	}

	meta, _ := json.Marshal(alertMetadata{
		Quantity:  p.Quantity,
		Threshold: threshold,
		Source:    "reconciler",
	})
	return &entity.StockAlert{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		Kind:        kind,
		State:       entity.AlertStateOpen,
		Priority:    priority,
		Title:       title,
		Description: description,
		Metadata:    meta,
		CreatedAt:   time.Now(),
	}
}
