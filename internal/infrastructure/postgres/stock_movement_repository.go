package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, kind, quantity, quantity_before, quantity_after, unit_cost, total_cost, reason, reference, created_at, created_by`

// StockMovementRepo implementación del ledger de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee: el ledger es append-only.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste una entrada del ledger.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, kind, quantity, quantity_before, quantity_after, unit_cost, total_cost, reason, reference, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Kind, movement.Quantity,
		movement.QuantityBefore, movement.QuantityAfter, movement.UnitCost, movement.TotalCost,
		movement.Reason, movement.Reference, movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var createdBy *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter,
		&m.UnitCost, &m.TotalCost, &m.Reason, &m.Reference, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// LastByProduct devuelve el movimiento más reciente de un producto (nil si no hay).
func (r *StockMovementRepo) LastByProduct(productID string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last movement by product: %w", err)
	}
	return m, nil
}

// List lista movimientos con filtros opcionales y paginación.
func (r *StockMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
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
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
