package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos.
// Quantity no se toca aquí: el stock entra y sale únicamente por movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto con cantidad 0 y activo.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.MinQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetBySKU(in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    decimal.Zero,
		MinQuantity: in.MinQuantity,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	resp := dto.ProductToResponse(product)
	return &resp, nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.ProductToResponse(product)
	return &resp, nil
}

// Update actualiza los campos editables de un producto. No permite modificar
// Quantity (se maneja vía movimientos).
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" || in.Price.IsNegative() || in.MinQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.MinQuantity = in.MinQuantity
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	resp := dto.ProductToResponse(product)
	return &resp, nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(limit, offset int) ([]dto.ProductResponse, error) {
	products, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ProductToResponse(p))
	}
	return out, nil
}
