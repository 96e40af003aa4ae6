package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Reader    inventory.Reader // lecturas puras; nil = Ledger
	ProductUC *usecase.ProductUseCase
	JWTSecret string
	// Health verifica dependencias (p. ej. ping a la DB); nil = siempre sano.
	Health func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNHEALTHY", Message: "almacenamiento no disponible"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(RoleAdmin)
	warehouse := RequireRole(RoleAdmin, RoleBodeguero)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", warehouse, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id/thresholds", warehouse, productHandler.UpdateThresholds)
	products.Delete("/:id", adminOnly, productHandler.Deactivate)

	// Inventory
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Reader)
	invGroup.Post("/movements", warehouse, inventoryHandler.RegisterMovement)
	invGroup.Get("/products/:id/movements", inventoryHandler.History)
	invGroup.Get("/products/:id/availability", inventoryHandler.Availability)
	invGroup.Post("/products/:id/reconcile", adminOnly, inventoryHandler.Reconcile)
	invGroup.Get("/replenishment", inventoryHandler.Replenishment)

	// Reservations
	reservations := invGroup.Group("/reservations")
	reservations.Post("/", inventoryHandler.CreateReservation)
	reservations.Get("/", inventoryHandler.ListReservations)
	reservations.Get("/:id", inventoryHandler.GetReservation)
	reservations.Post("/:id/release", inventoryHandler.ReleaseReservation)
	reservations.Post("/:id/consume", warehouse, inventoryHandler.ConsumeReservation)
}
