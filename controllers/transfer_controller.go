package controllers

import (
	"stock-app/apperror"
	"stock-app/repositories"
	"stock-app/services"
	"stock-app/types"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type TransferController struct {
	Transfers *services.TransferService
}

func NewTransferController(transfers *services.TransferService) *TransferController {
	return &TransferController{Transfers: transfers}
}

func transferID(ctx *fiber.Ctx) (types.SnowflakeID, error) {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid transfer id", map[string]string{"id": "numeric"})
	}
	return id, nil
}

func (c *TransferController) Initiate(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	var input services.TransferRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	transfer, err := c.Transfers.Initiate(ctx.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusCreated, "Transfer submitted for approval", transfer)
}

func (c *TransferController) Approve(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	id, err := transferID(ctx)
	if err != nil {
		return err
	}

	transfer, err := c.Transfers.Approve(ctx.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Transfer approved successfully", transfer)
}

func (c *TransferController) Reject(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	id, err := transferID(ctx)
	if err != nil {
		return err
	}
	var input reasonInput
	if err := parseOptionalBody(ctx, &input); err != nil {
		return err
	}

	transfer, err := c.Transfers.Reject(ctx.UserContext(), actor, id, input.Reason)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Transfer rejected successfully", transfer)
}

func (c *TransferController) Get(ctx *fiber.Ctx) error {
	id, err := transferID(ctx)
	if err != nil {
		return err
	}
	transfer, err := c.Transfers.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Transfer retrieved", transfer)
}

func (c *TransferController) List(ctx *fiber.Ctx) error {
	var f repositories.TransferFilter
	var err error
	if f.FromDepartmentID, err = queryUint(ctx, "from_department_id"); err != nil {
		return err
	}
	if f.ToDepartmentID, err = queryUint(ctx, "to_department_id"); err != nil {
		return err
	}
	if f.StockItemID, err = queryUint(ctx, "item_id"); err != nil {
		return err
	}
	f.Status = strings.TrimSpace(ctx.Query("status"))

	page, perPage := queryPage(ctx)
	result, err := c.Transfers.List(ctx.UserContext(), f, page, perPage)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Transfers retrieved", result)
}
