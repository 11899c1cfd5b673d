package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stock-ledger/internal/application/alerts"
	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/application/usecase"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	Movement  *ledger.MovementUseCase
	AlertRepo repository.StockAlertRepository
	Scheduler *alerts.Scheduler
	JWTSecret string
}

// Router registra las rutas de la API. Todas las rutas de negocio van detrás
// del Bearer Token; las escrituras además exigen rol admin u operador.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole("admin", "operador")

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", writers, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", writers, productHandler.Update)

	// Ledger por producto (lectura)
	movementHandler := NewMovementHandler(deps.Movement)
	products.Get("/:id/movements/last", movementHandler.LastByProduct)

	// Ledger de movimientos (protegido)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/movements", writers, movementHandler.Apply)
	invGroup.Post("/movements/batch", writers, movementHandler.ApplyBatch)
	invGroup.Get("/movements", movementHandler.List)
	invGroup.Get("/movements/:id", movementHandler.GetByID)

	// Alertas (protegido)
	alertGroup := protected.Group("/alerts")
	alertHandler := NewAlertHandler(deps.AlertRepo, deps.Scheduler)
	alertGroup.Get("/", alertHandler.List)
	alertGroup.Patch("/:id/state", writers, alertHandler.UpdateState)
	alertGroup.Post("/reconcile", writers, alertHandler.Reconcile)
}
