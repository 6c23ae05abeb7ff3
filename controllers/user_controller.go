package controllers

import (
	"stock-app/repositories"
	"stock-app/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Accounts *services.AccountService
}

func NewUserController(accounts *services.AccountService) *UserController {
	return &UserController{Accounts: accounts}
}

func (c *UserController) ListPending(ctx *fiber.Ctx) error {
	pending, err := c.Accounts.ListPending(ctx.UserContext())
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Pending registrations retrieved", pending)
}

func (c *UserController) Review(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	var input services.ReviewRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	result, err := c.Accounts.Review(ctx.UserContext(), actor, input)
	if err != nil {
		return err
	}

	message := "User approved successfully"
	if input.Action == services.ReviewReject {
		message = "User registration rejected"
	}
	return respond(ctx, fiber.StatusOK, message, result)
}

func (c *UserController) UpdateRoles(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	var input services.UpdateRolesRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	user, err := c.Accounts.UpdateRoles(ctx.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "User roles updated", user)
}

func (c *UserController) UpdateStatus(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	var input services.UpdateStatusRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	user, err := c.Accounts.UpdateStatus(ctx.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "User status updated", user)
}

func (c *UserController) List(ctx *fiber.Ctx) error {
	var f repositories.UserFilter
	var err error
	if f.DepartmentID, err = queryUint(ctx, "department_id"); err != nil {
		return err
	}
	f.Role = strings.TrimSpace(ctx.Query("role"))
	f.Status = strings.TrimSpace(ctx.Query("status"))

	users, err := c.Accounts.ListUsers(ctx.UserContext(), f)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Users retrieved", users)
}
