package routes

import (
	"stock-app/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupReferenceRoutes mounts departments and categories.
func SetupReferenceRoutes(router fiber.Router, svc *Services, g gates) {
	controller := controllers.NewReferenceController(svc.Departments, svc.Categories)

	router.Get("/departments", controller.ListDepartments)

	router.Get("/categories", g.authed, controller.ListCategories)
	router.Post("/categories", g.authed, g.admin, controller.CreateCategory)
	router.Put("/categories/:id", g.authed, g.admin, controller.UpdateCategory)
	router.Delete("/categories/:id", g.authed, g.admin, controller.DeleteCategory)
}
