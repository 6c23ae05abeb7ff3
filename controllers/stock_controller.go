package controllers

import (
	"stock-app/repositories"
	"stock-app/report"
	"stock-app/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type StockController struct {
	Stock       *services.StockService
	Assignments *services.AssignmentService
}

func NewStockController(stock *services.StockService, assignments *services.AssignmentService) *StockController {
	return &StockController{Stock: stock, Assignments: assignments}
}

func stockFilter(ctx *fiber.Ctx) (repositories.StockFilter, error) {
	var f repositories.StockFilter
	var err error
	if f.DepartmentID, err = queryUint(ctx, "department_id"); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryUint(ctx, "category_id"); err != nil {
		return f, err
	}
	if f.BelowPar, err = queryBool(ctx, "below_par"); err != nil {
		return f, err
	}
	f.Status = strings.TrimSpace(ctx.Query("status"))
	f.Search = ctx.Query("search")
	return f, nil
}

func (c *StockController) List(ctx *fiber.Ctx) error {
	f, err := stockFilter(ctx)
	if err != nil {
		return err
	}
	items, err := c.Stock.List(ctx.UserContext(), f)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Stock retrieved", items)
}

func (c *StockController) Get(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	item, err := c.Stock.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Stock item retrieved", item)
}

type reasonInput struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (c *StockController) Delete(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var input reasonInput
	if err := parseOptionalBody(ctx, &input); err != nil {
		return err
	}

	item, err := c.Stock.Delete(ctx.UserContext(), actor, id, strings.TrimSpace(input.Reason))
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Stock item deleted", item)
}

func (c *StockController) MarkFaulty(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var input struct {
		Reason string `json:"reason" validate:"required,max=500"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	item, err := c.Stock.MarkFaulty(ctx.UserContext(), actor, id, strings.TrimSpace(input.Reason))
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Stock item marked as faulty", item)
}

func (c *StockController) UpdateParLevel(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var input struct {
		ParLevel *int   `json:"par_level" validate:"required,min=0"`
		Reason   string `json:"reason" validate:"max=500"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	item, err := c.Stock.UpdateParLevel(ctx.UserContext(), actor, id, *input.ParLevel, strings.TrimSpace(input.Reason))
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Par level updated", item)
}

func (c *StockController) Warnings(ctx *fiber.Ctx) error {
	departmentID, err := queryUint(ctx, "department_id")
	if err != nil {
		return err
	}
	warnings, err := c.Stock.Warnings(ctx.UserContext(), departmentID)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Stock warnings retrieved", warnings)
}

func (c *StockController) Export(ctx *fiber.Ctx) error {
	f, err := stockFilter(ctx)
	if err != nil {
		return err
	}
	items, err := c.Stock.List(ctx.UserContext(), f)
	if err != nil {
		return err
	}
	w, err := report.Stock(items)
	if err != nil {
		return err
	}
	return sendWorkbook(ctx, w, "stock")
}

func (c *StockController) Assign(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	var input services.AssignRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	assignment, err := c.Assignments.Assign(ctx.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusCreated, "Item assigned", assignment)
}

func (c *StockController) Return(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	var input services.ReturnRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	assignment, err := c.Assignments.Return(ctx.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Item returned", assignment)
}

func (c *StockController) MyEquipment(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	items, err := c.Assignments.MyEquipment(ctx.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Equipment retrieved", items)
}

func (c *StockController) ListAssignments(ctx *fiber.Ctx) error {
	var f repositories.AssignmentFilter
	var err error
	if f.UserID, err = queryUint(ctx, "user_id"); err != nil {
		return err
	}
	if f.StockItemID, err = queryUint(ctx, "item_id"); err != nil {
		return err
	}
	f.Status = strings.TrimSpace(ctx.Query("status"))

	page, perPage := queryPage(ctx)
	result, err := c.Assignments.List(ctx.UserContext(), f, page, perPage)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Assignments retrieved", result)
}
