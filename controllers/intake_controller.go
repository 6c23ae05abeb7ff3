package controllers

import (
	"stock-app/repositories"
	"stock-app/report"
	"stock-app/services"

	"github.com/gofiber/fiber/v2"
)

type IntakeController struct {
	Intake *services.IntakeService
}

func NewIntakeController(intake *services.IntakeService) *IntakeController {
	return &IntakeController{Intake: intake}
}

// LookupBarcode answers with found=false rather than 404 for unknown codes.
func (c *IntakeController) LookupBarcode(ctx *fiber.Ctx) error {
	result, err := c.Intake.LookupBarcode(ctx.UserContext(), ctx.Params("code"))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"found":   result.Found,
		"data":    result.Data,
	})
}

func (c *IntakeController) Create(ctx *fiber.Ctx) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return err
	}
	var input services.IntakeRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}

	result, err := c.Intake.Intake(ctx.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusCreated, result.Message, result)
}

func intakeFilter(ctx *fiber.Ctx) (repositories.IntakeFilter, error) {
	f := repositories.IntakeFilter{Supplier: ctx.Query("supplier")}
	var err error
	if f.DepartmentID, err = queryUint(ctx, "department_id"); err != nil {
		return f, err
	}
	if f.DateFrom, err = queryDate(ctx, "date_from"); err != nil {
		return f, err
	}
	if f.DateTo, err = queryDate(ctx, "date_to"); err != nil {
		return f, err
	}
	return f, nil
}

func (c *IntakeController) ListLogs(ctx *fiber.Ctx) error {
	f, err := intakeFilter(ctx)
	if err != nil {
		return err
	}
	page, perPage := queryPage(ctx)
	result, err := c.Intake.ListLogs(ctx.UserContext(), f, page, perPage)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Intake logs retrieved", result)
}

func (c *IntakeController) ExportLogs(ctx *fiber.Ctx) error {
	f, err := intakeFilter(ctx)
	if err != nil {
		return err
	}
	logs, err := c.Intake.ListAll(ctx.UserContext(), f)
	if err != nil {
		return err
	}
	w, err := report.IntakeLogs(logs)
	if err != nil {
		return err
	}
	return sendWorkbook(ctx, w, "intake_logs")
}
