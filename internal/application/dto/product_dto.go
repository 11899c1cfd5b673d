package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
// La cantidad inicial es siempre 0: el stock entra únicamente por movimientos.
type CreateProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// UpdateProductRequest body para PUT /api/products/:id.
// No permite modificar Quantity (se maneja vía movimientos).
type UpdateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Active      *bool           `json:"active,omitempty"`
}

// ProductResponse representa un producto en respuestas HTTP.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductToResponse mapea la entidad al DTO de respuesta.
func ProductToResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		MinQuantity: p.MinQuantity,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
