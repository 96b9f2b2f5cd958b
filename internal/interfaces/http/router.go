// Package http expone la API REST sobre Fiber.
package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps agrupa los handlers y la configuración del router.
type RouterDeps struct {
	JWTSecret string
	Products  *ProductHandler
	Requests  *RequestHandler
	Debts     *DebtHandler
}

// SetupRoutes registra todas las rutas de la API bajo /api/v1.
//
// Matriz de roles:
//   - user: crear/listar/ver/cancelar sus solicitudes, ver sus deudas
//   - operator: todo lo anterior + catálogo, aprobar/entregar/devolver,
//     movimientos manuales, deudas manuales y resoluciones
//   - admin: todo
func SetupRoutes(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1", AuthMiddleware(deps.JWTSecret))

	operator := RequireRole(RoleOperator)

	// Catálogo y libro de inventario
	products := api.Group("/products")
	products.Get("/", deps.Products.List)
	products.Get("/low-stock", deps.Products.LowStock)
	products.Get("/:id", deps.Products.Get)
	products.Get("/:id/transactions", deps.Products.History)
	products.Get("/:id/balance", deps.Products.Balance)
	products.Post("/", operator, deps.Products.Create)
	products.Put("/:id", operator, deps.Products.Update)
	products.Delete("/:id", operator, deps.Products.Deactivate)
	products.Post("/:id/adjust", operator, deps.Products.Adjust)

	// Ciclo de vida de solicitudes
	requests := api.Group("/requests")
	requests.Post("/", deps.Requests.Create)
	requests.Get("/", deps.Requests.List)
	requests.Get("/statistics", deps.Requests.Statistics)
	requests.Post("/check-availability", deps.Requests.CheckAvailability)
	requests.Get("/:id", deps.Requests.Get)
	requests.Get("/:id/delivery-note", deps.Requests.DeliveryNote)
	requests.Post("/:id/cancel", deps.Requests.Cancel)
	requests.Post("/:id/approve", operator, deps.Requests.Approve)
	requests.Post("/:id/collect", operator, deps.Requests.Collect)
	requests.Post("/:id/deliver", operator, deps.Requests.Deliver)
	requests.Post("/:id/return", operator, deps.Requests.Return)

	// Libro de deudas
	debts := api.Group("/debts")
	debts.Get("/", deps.Debts.List)
	debts.Get("/statistics", deps.Debts.Statistics)
	debts.Get("/:id", deps.Debts.Get)
	debts.Post("/", operator, deps.Debts.Create)
	debts.Post("/:id/resolve", operator, deps.Debts.Resolve)
}
