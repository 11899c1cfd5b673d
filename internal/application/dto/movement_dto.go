package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// ApplyMovementRequest body para POST /api/inventory/movements.
// Para kind=adjust, quantity es la cantidad absoluta objetivo (no un delta).
type ApplyMovementRequest struct {
	ProductID string           `json:"product_id"`
	Kind      string           `json:"kind"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Reference string           `json:"reference,omitempty"`
}

// ApplyMovementBatchRequest body para POST /api/inventory/movements/batch.
type ApplyMovementBatchRequest struct {
	Movements []ApplyMovementRequest `json:"movements"`
}

// MovementResponse representa un movimiento del ledger en respuestas HTTP.
type MovementResponse struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"product_id"`
	Kind           string           `json:"kind"`
	Quantity       decimal.Decimal  `json:"quantity"`
	QuantityBefore decimal.Decimal  `json:"quantity_before"`
	QuantityAfter  decimal.Decimal  `json:"quantity_after"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost      *decimal.Decimal `json:"total_cost,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	Reference      string           `json:"reference,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ApplyMovementResponse respuesta de un movimiento aplicado.
type ApplyMovementResponse struct {
	Movement    MovementResponse `json:"movement"`
	NewQuantity decimal.Decimal  `json:"new_quantity"`
}

// MovementToResponse mapea la entidad al DTO de respuesta.
func MovementToResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Kind:           m.Kind,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		UnitCost:       m.UnitCost,
		TotalCost:      m.TotalCost,
		Reason:         m.Reason,
		Reference:      m.Reference,
		CreatedAt:      m.CreatedAt,
	}
}
