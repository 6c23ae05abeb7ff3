package routes

import (
	"stock-app/controllers"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func SetupAuthRoutes(router fiber.Router, svc *Services, g gates, loginLimit int) {
	controller := controllers.NewAuthController(svc.Auth)

	if loginLimit <= 0 {
		loginLimit = 10
	}
	loginLimiter := limiter.New(limiter.Config{
		Max:        loginLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts, try again later")
		},
	})

	api := router.Group("/auth")
	api.Post("/login", loginLimiter, controller.Login)
	api.Post("/register", controller.Register)
	api.Get("/me", g.authed, controller.Me)
	api.Post("/logout", g.authed, controller.Logout)
}
