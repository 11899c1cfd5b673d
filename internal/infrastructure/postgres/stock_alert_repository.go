package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

const alertColumns = `id, product_id, kind, state, priority, title, description, metadata, created_at, resolved_at`

// StockAlertRepo implementación del puerto StockAlertRepository sobre PostgreSQL.
// La unicidad de alerta open por (producto, tipo) la refuerza el índice único
// parcial uq_stock_alerts_open además del chequeo del reconciliador.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

// Create inserta la alerta. Devuelve domain.ErrDuplicate si ya hay una alerta
// open del mismo (producto, tipo).
func (r *StockAlertRepo) Create(alert *entity.StockAlert) error {
	query := `
		INSERT INTO stock_alerts (id, product_id, kind, state, priority, title, description, metadata, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	productID := (*string)(nil)
	if alert.ProductID != "" {
		productID = &alert.ProductID
	}
	_, err := r.q.Exec(context.Background(), query,
		alert.ID, productID, alert.Kind, alert.State, alert.Priority,
		alert.Title, alert.Description, alert.Metadata, alert.CreatedAt, alert.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	var productID *string
	err := row.Scan(
		&a.ID, &productID, &a.Kind, &a.State, &a.Priority,
		&a.Title, &a.Description, &a.Metadata, &a.CreatedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if productID != nil {
		a.ProductID = *productID
	}
	return &a, nil
}

// GetByID obtiene una alerta por ID.
func (r *StockAlertRepo) GetByID(id string) (*entity.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts WHERE id = $1`
	a, err := scanAlert(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// List lista alertas con filtros opcionales y paginación.
func (r *StockAlertRepo) List(filter repository.AlertFilter) ([]*entity.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, filter.Kind)
		pos++
	}
	if filter.State != "" {
		query += fmt.Sprintf(" AND state = $%d", pos)
		args = append(args, filter.State)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// ListOpenByProduct lista las alertas open de un producto para los tipos dados.
func (r *StockAlertRepo) ListOpenByProduct(productID string, kinds ...string) ([]*entity.StockAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM stock_alerts
		WHERE product_id = $1 AND state = 'open' AND kind = ANY($2)
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, productID, kinds)
	if err != nil {
		return nil, fmt.Errorf("list open alerts by product: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// ListProductIDsWithOpen devuelve los IDs de producto con al menos una alerta
// open de los tipos dados.
func (r *StockAlertRepo) ListProductIDsWithOpen(ctx context.Context, kinds ...string) ([]string, error) {
	query := `
		SELECT DISTINCT product_id
		FROM stock_alerts
		WHERE state = 'open' AND product_id IS NOT NULL AND kind = ANY($1)`
	rows, err := r.q.Query(ctx, query, kinds)
	if err != nil {
		return nil, fmt.Errorf("list products with open alerts: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkResolved pasa una alerta open a resolved y estampa resolved_at.
// Si la alerta ya no está open la transición no aplica (ErrConflict).
func (r *StockAlertRepo) MarkResolved(id string, resolvedAt time.Time) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_alerts SET state = 'resolved', resolved_at = $2 WHERE id = $1 AND state = 'open'`,
		id, resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// UpdateState aplica una transición manual open -> read|resolved|ignored.
// resolved_at solo se estampa al resolver.
func (r *StockAlertRepo) UpdateState(id string, state string, at time.Time) error {
	var resolvedAt *time.Time
	if state == entity.AlertStateResolved {
		resolvedAt = &at
	}
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_alerts SET state = $2, resolved_at = COALESCE($3, resolved_at) WHERE id = $1 AND state = 'open'`,
		id, state, resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update alert state: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func collectAlerts(rows pgx.Rows) ([]*entity.StockAlert, error) {
	var list []*entity.StockAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
