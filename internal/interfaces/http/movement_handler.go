package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/infrastructure/metrics"
)

// MovementHandler maneja las peticiones HTTP del ledger de movimientos (protegido).
type MovementHandler struct {
	uc *ledger.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *ledger.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// movementError mapea errores de dominio a respuestas HTTP.
// NotFound -> 404; InvalidArgument y NegativeStock -> 400; resto -> 500.
// En errores de batch se incluye el índice del ítem que falló.
func movementError(c *fiber.Ctx, err error) error {
	var item *int
	var batchErr *ledger.BatchItemError
	if errors.As(err, &batchErr) {
		idx := batchErr.Index
		item = &idx
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		metrics.MovementsRejected.WithLabelValues("not_found").Inc()
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado", Item: item})
	case errors.Is(err, domain.ErrNegativeStock):
		metrics.MovementsRejected.WithLabelValues("negative_stock").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "NEGATIVE_STOCK", Message: "el movimiento dejaría el stock en negativo", Item: item})
	case errors.Is(err, domain.ErrInvalidInput):
		metrics.MovementsRejected.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Item: item})
	}
	metrics.MovementsRejected.WithLabelValues("internal").Inc()
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error(), Item: item})
}

func toInput(in dto.ApplyMovementRequest, userID string) ledger.MovementInput {
	return ledger.MovementInput{
		ProductID: in.ProductID,
		Kind:      in.Kind,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Reason:    in.Reason,
		Reference: in.Reference,
		CreatedBy: userID,
	}
}

// Apply godoc
// @Summary      Aplicar movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, kind, quantity; unit_cost, reason, reference opcionales"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *MovementHandler) Apply(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.ApplyMovement(c.Context(), toInput(in, GetUserID(c)))
	if err != nil {
		return movementError(c, err)
	}
	metrics.MovementsApplied.WithLabelValues(result.Movement.Kind).Inc()
	return c.Status(fiber.StatusCreated).JSON(dto.ApplyMovementResponse{
		Movement:    dto.MovementToResponse(result.Movement),
		NewQuantity: result.NewQuantity,
	})
}

// ApplyBatch godoc
// @Summary      Aplicar batch de movimientos (todo o nada)
// @Description  Los movimientos se aplican en orden dentro de una sola transacción;
//
//	si un ítem falla, ninguno se persiste y el error indica el ítem.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementBatchRequest  true  "Lista de movimientos"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/batch [post]
func (h *MovementHandler) ApplyBatch(c *fiber.Ctx) error {
	var in dto.ApplyMovementBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	userID := GetUserID(c)
	inputs := make([]ledger.MovementInput, 0, len(in.Movements))
	for _, m := range in.Movements {
		inputs = append(inputs, toInput(m, userID))
	}
	results, err := h.uc.ApplyMovementBatch(c.Context(), inputs)
	if err != nil {
		return movementError(c, err)
	}
	out := make([]dto.ApplyMovementResponse, 0, len(results))
	for i := range results {
		metrics.MovementsApplied.WithLabelValues(results[i].Movement.Kind).Inc()
		out = append(out, dto.ApplyMovementResponse{
			Movement:    dto.MovementToResponse(results[i].Movement),
			NewQuantity: results[i].NewQuantity,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movements": out})
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	mov, err := h.uc.GetMovement(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.MovementToResponse(mov))
}

// LastByProduct godoc
// @Summary      Último movimiento de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements/last [get]
func (h *MovementHandler) LastByProduct(c *fiber.Ctx) error {
	mov, err := h.uc.LastMovement(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin movimientos para el producto"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.MovementToResponse(mov))
}

// List godoc
// @Summary      Listar movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        kind        query  string  false  "Filtrar por tipo"
// @Param        from        query  string  false  "Desde (RFC3339)"
// @Param        to          query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Kind:      c.Query("kind"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		filter.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		filter.To = &t
	}

	list, err := h.uc.ListMovements(filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementToResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
