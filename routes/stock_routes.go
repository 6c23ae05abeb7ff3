package routes

import (
	"stock-app/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupStockRoutes mounts the inventory, assignment, return and transfer
// request endpoints. Fixed paths are registered before /stock/:id.
func SetupStockRoutes(router fiber.Router, svc *Services, g gates) {
	controller := controllers.NewStockController(svc.Stock, svc.Assignments)
	transfers := controllers.NewTransferController(svc.Transfers)

	api := router.Group("/stock", g.authed)
	api.Get("/my-equipment", controller.MyEquipment)
	api.Post("/return", controller.Return)

	api.Get("/", g.managers, controller.List)
	api.Get("/warnings", g.managers, controller.Warnings)
	api.Get("/export", g.managers, controller.Export)
	api.Post("/assign", g.managers, controller.Assign)
	api.Post("/transfer", g.managers, transfers.Initiate)
	api.Get("/:id", g.managers, controller.Get)
	api.Delete("/:id", g.managers, controller.Delete)
	api.Post("/:id/mark-faulty", g.managers, controller.MarkFaulty)
	api.Patch("/:id/par-level", g.managers, controller.UpdateParLevel)

	router.Get("/assignments", g.authed, g.managers, controller.ListAssignments)
}

func SetupTransferRoutes(router fiber.Router, svc *Services, g gates) {
	controller := controllers.NewTransferController(svc.Transfers)

	api := router.Group("/transfers", g.authed)
	api.Get("/", g.managers, controller.List)
	api.Get("/:id", g.managers, controller.Get)
	api.Post("/:id/approve", g.admin, controller.Approve)
	api.Post("/:id/reject", g.admin, controller.Reject)
}
