package dto

import (
	"encoding/json"
	"time"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// AlertResponse representa una alerta en respuestas HTTP.
type AlertResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Kind        string          `json:"kind"`
	State       string          `json:"state"`
	Priority    string          `json:"priority"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
}

// UpdateAlertStateRequest body para PATCH /api/alerts/:id/state.
type UpdateAlertStateRequest struct {
	State string `json:"state"` // read | resolved | ignored
}

// AlertToResponse mapea la entidad al DTO de respuesta.
func AlertToResponse(a *entity.StockAlert) AlertResponse {
	return AlertResponse{
		ID:          a.ID,
		ProductID:   a.ProductID,
		Kind:        a.Kind,
		State:       a.State,
		Priority:    a.Priority,
		Title:       a.Title,
		Description: a.Description,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
		ResolvedAt:  a.ResolvedAt,
	}
}
