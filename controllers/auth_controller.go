package controllers

import (
	"stock-app/middleware"
	"stock-app/services"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

func clientInfo(ctx *fiber.Ctx) services.ClientInfo {
	return services.ClientInfo{IP: ctx.IP(), UserAgent: ctx.Get(fiber.HeaderUserAgent)}
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	result, err := c.Auth.Login(ctx.UserContext(), input.Username, input.Password, clientInfo(ctx))
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Login successful", result)
}

func (c *AuthController) Register(ctx *fiber.Ctx) error {
	var input services.RegisterRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	result, err := c.Auth.Register(ctx.UserContext(), input, clientInfo(ctx))
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if result.Status == services.RegistrationPendingApproval {
		status = fiber.StatusAccepted
	}
	return respond(ctx, status, result.Message, result)
}

// Me restores the session of the token holder.
func (c *AuthController) Me(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	fresh, err := c.Auth.Me(ctx.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Session active", fresh)
}

func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	if err := c.Auth.Logout(ctx.UserContext(), middleware.CurrentSessionID(ctx)); err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Logout successful", nil)
}
