package routes

import (
	"stock-app/controllers"

	"github.com/gofiber/fiber/v2"
)

func SetupIntakeRoutes(router fiber.Router, svc *Services, g gates) {
	controller := controllers.NewIntakeController(svc.Intake)

	api := router.Group("/intake", g.authed, g.managers)
	api.Get("/barcode/:code", controller.LookupBarcode)
	api.Post("/", controller.Create)
	api.Get("/logs", controller.ListLogs)
	api.Get("/logs/export", controller.ExportLogs)
}
