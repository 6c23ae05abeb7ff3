package routes

import (
	"stock-app/controllers"
	"stock-app/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SetupAdminRoutes mounts account administration and the audit trail.
func SetupAdminRoutes(router fiber.Router, svc *Services, g gates) {
	users := controllers.NewUserController(svc.Accounts)
	audit := controllers.NewAuditController(svc.Audit)

	admin := router.Group("/admin", g.authed, g.admin)
	admin.Get("/pending-users", users.ListPending)
	admin.Post("/users/approve", users.Review)
	admin.Put("/users/roles", users.UpdateRoles)
	admin.Put("/users/status", users.UpdateStatus)

	router.Get("/users", g.authed, g.managers, users.List)

	router.Get("/audit/logs", g.authed, g.admin, audit.List)
	router.Get("/audit/logs/export", g.authed, g.admin, audit.Export)
}

// SetupRealtimeRoutes mounts the live audit feed outside the API prefix.
func SetupRealtimeRoutes(app *fiber.App, hub *realtime.Hub, g gates) {
	app.Get("/ws/audit", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}, g.authed, g.admin, hub.Handler())
}
