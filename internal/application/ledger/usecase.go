package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/inventory"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// MovementUseCase aplica movimientos de stock de forma transaccional
// (in, out, adjust, transfer_in, transfer_out) con bloqueo de fila
// (SELECT FOR UPDATE) y Commit/Rollback. Cada movimiento exitoso actualiza
// Product.Quantity y agrega exactamente una entrada inmutable al ledger,
// en la misma transacción.
type MovementUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	audit        AuditNotifier
}

// NewMovementUseCase construye el caso de uso. audit puede ser nil (sin auditoría).
func NewMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	audit AuditNotifier,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		audit:        audit,
	}
}

// MovementInput entrada para aplicar un movimiento de stock.
// Quantity debe ser > 0; en adjust se interpreta como la cantidad absoluta
// objetivo (no delta). UnitCost es opcional: en salidas se usa el precio
// actual del producto si no se indica.
type MovementInput struct {
	ProductID string
	Kind      string
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	Reason    string
	Reference string
	CreatedBy string
}

// MovementResult resultado de un movimiento aplicado.
type MovementResult struct {
	Movement    *entity.StockMovement
	NewQuantity decimal.Decimal
}

// BatchItemError identifica qué ítem de un batch falló y por qué.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("movimiento %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }

// validateInput valida campos requeridos, tipo enumerado y cantidad > 0.
func validateInput(input MovementInput) error {
	if input.ProductID == "" || input.Kind == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidMovementKind(input.Kind) {
		return domain.ErrInvalidInput
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if input.UnitCost != nil && input.UnitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	return nil
}

// ApplyMovement valida la entrada, verifica que el producto exista e inicia
// una transacción que bloquea la fila del producto, calcula la nueva cantidad
// según el tipo, rechaza resultados negativos, escribe la cantidad y agrega
// el movimiento. Tras el commit notifica al colaborador de auditoría
// (best-effort, fuera de la transacción).
func (uc *MovementUseCase) ApplyMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	// Verificación previa de existencia: error de cliente antes de abrir la tx.
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var result *MovementResult
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		mov, err := applyOne(productRepo, movementRepo, input, time.Now())
		if err != nil {
			return err
		}
		result = &MovementResult{Movement: mov, NewQuantity: mov.QuantityAfter}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.audit != nil {
		go uc.audit.MovementApplied(context.Background(), result.Movement)
	}
	return result, nil
}

// ApplyMovementBatch aplica los movimientos en orden de entrada dentro de UNA
// transacción compartida: si cualquier ítem falla, todo el batch se revierte y
// el error indica qué ítem falló (BatchItemError). Los ítems posteriores
// observan la cantidad ya actualizada por los anteriores del mismo batch.
func (uc *MovementUseCase) ApplyMovementBatch(ctx context.Context, inputs []MovementInput) ([]MovementResult, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrInvalidInput
	}

	results := make([]MovementResult, 0, len(inputs))
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		now := time.Now()
		for i, input := range inputs {
			if err := validateInput(input); err != nil {
				return &BatchItemError{Index: i, Err: err}
			}
			mov, err := applyOne(productRepo, movementRepo, input, now)
			if err != nil {
				return &BatchItemError{Index: i, Err: err}
			}
			results = append(results, MovementResult{Movement: mov, NewQuantity: mov.QuantityAfter})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.audit != nil {
		for i := range results {
			go uc.audit.MovementApplied(context.Background(), results[i].Movement)
		}
	}
	return results, nil
}

// applyOne ejecuta un movimiento con los repositorios de la transacción:
// bloquea la fila del producto, resuelve la cantidad, aplica la guarda de
// stock negativo, resuelve costos, persiste cantidad y movimiento.
func applyOne(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	input MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	product, err := productRepo.GetForUpdate(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	before := product.Quantity
	after, err := inventory.ResolveQuantity(input.Kind, before, input.Quantity)
	if err != nil {
		return nil, err
	}
	if after.IsNegative() {
		return nil, domain.ErrNegativeStock
	}

	// Costo: en salidas sin costo indicado se usa el precio actual del producto.
	unitCost := input.UnitCost
	if unitCost == nil && entity.OutboundKind(input.Kind) {
		price := product.Price
		unitCost = &price
	}
	var totalCost *decimal.Decimal
	if unitCost != nil {
		tc := inventory.TotalCost(*unitCost, input.Quantity)
		totalCost = &tc
	}

	if err := productRepo.UpdateQuantity(product.ID, after); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      product.ID,
		Kind:           input.Kind,
		Quantity:       input.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		UnitCost:       unitCost,
		TotalCost:      totalCost,
		Reason:         input.Reason,
		Reference:      input.Reference,
		CreatedAt:      now,
		CreatedBy:      input.CreatedBy,
	}
	if err := movementRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// GetMovement obtiene un movimiento por ID (lectura, fuera del camino de escritura).
func (uc *MovementUseCase) GetMovement(id string) (*entity.StockMovement, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	mov, err := uc.movementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

// LastMovement devuelve el movimiento más reciente de un producto.
// El producto debe existir; sin movimientos devuelve ErrNotFound.
func (uc *MovementUseCase) LastMovement(productID string) (*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	mov, err := uc.movementRepo.LastByProduct(productID)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

// ListMovements lista movimientos con filtros y paginación.
func (uc *MovementUseCase) ListMovements(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.Kind != "" && !entity.ValidMovementKind(filter.Kind) {
		return nil, domain.ErrInvalidInput
	}
	return uc.movementRepo.List(filter)
}
