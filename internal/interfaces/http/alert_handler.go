package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stock-ledger/internal/application/alerts"
	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// AlertHandler maneja las peticiones HTTP de alertas y el disparo manual
// de la reconciliación (protegido).
type AlertHandler struct {
	alertRepo repository.StockAlertRepository
	scheduler *alerts.Scheduler
}

// NewAlertHandler construye el handler.
func NewAlertHandler(alertRepo repository.StockAlertRepository, scheduler *alerts.Scheduler) *AlertHandler {
	return &AlertHandler{alertRepo: alertRepo, scheduler: scheduler}
}

// List godoc
// @Summary      Listar alertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        kind        query  string  false  "Filtrar por tipo"
// @Param        state       query  string  false  "Filtrar por estado"
// @Success      200  {array}   dto.AlertResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	state := c.Query("state")
	if state != "" && !entity.ValidAlertState(state) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado inválido"})
	}
	list, err := h.alertRepo.List(repository.AlertFilter{
		ProductID: c.Query("product_id"),
		Kind:      c.Query("kind"),
		State:     state,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AlertToResponse(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}

// UpdateState godoc
// @Summary      Transición manual de una alerta abierta
// @Description  open -> read | resolved | ignored. Los estados finales no se reabren:
//
//	un nuevo incumplimiento crea una alerta nueva.
//
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la alerta"
// @Param        body  body  dto.UpdateAlertStateRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.AlertResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/state [patch]
func (h *AlertHandler) UpdateState(c *fiber.Ctx) error {
	var in dto.UpdateAlertStateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.State == entity.AlertStateOpen || !entity.ValidAlertState(in.State) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado destino inválido"})
	}
	id := c.Params("id")
	alert, err := h.alertRepo.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if alert == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "alerta no encontrada"})
	}
	if err := h.alertRepo.UpdateState(id, in.State, time.Now()); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "la alerta ya no está abierta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	updated, err := h.alertRepo.GetByID(id)
	if err != nil || updated == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "alerta actualizada pero no recuperable"})
	}
	return c.JSON(dto.AlertToResponse(updated))
}

// Reconcile godoc
// @Summary      Disparar la reconciliación de alertas ahora
// @Description  Idempotente respecto a la pasada periódica: si hay una corrida
//
//	en curso la petición se omite (409), no se encola.
//
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/alerts/reconcile [post]
func (h *AlertHandler) Reconcile(c *fiber.Ctx) error {
	if err := h.scheduler.RunNow(c.Context()); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RUN_IN_PROGRESS", Message: "ya hay una reconciliación en curso"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "reconciliación ejecutada"})
}
