package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements *MovementHandler
	Stock     *StockHandler
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	allRoles := RequireRole(entity.RoleAdmin, entity.RoleGerente, entity.RoleOperador)
	managers := RequireRole(entity.RoleAdmin, entity.RoleGerente)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Movements
	mv := deps.Movements
	movements := api.Group("/movements")
	movements.Post("/", allRoles, mv.Create)
	movements.Post("/bulk", allRoles, mv.CreateBulk)
	movements.Get("/", allRoles, mv.List)
	movements.Get("/:id", allRoles, mv.GetByID)
	movements.Patch("/:id", managers, mv.Update)
	movements.Delete("/:id", managers, mv.Delete)
	movements.Post("/:id/verify", managers, mv.Verify)
	movements.Post("/:id/cancel", managers, mv.Cancel)

	api.Get("/stores/:id/movements", allRoles, mv.ListByStore)
	api.Get("/products/:id/movements", allRoles, mv.ListByProduct)
	api.Get("/suppliers/:id/movements", allRoles, mv.ListBySupplier)

	// Stock derivado
	st := deps.Stock
	stock := api.Group("/stock")
	stock.Get("/", allRoles, st.GetStock)
	stock.Get("/history", allRoles, st.History)
	stock.Get("/low", allRoles, st.LowStock)
	stock.Get("/verify", managers, st.Verify)
	stock.Post("/recalculate", adminOnly, st.Recalculate)

	api.Get("/analytics/movements", managers, st.Analytics)
}
