package controllers

import (
	"stock-app/repositories"
	"stock-app/report"
	"stock-app/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Audit *services.AuditService
}

func NewAuditController(audit *services.AuditService) *AuditController {
	return &AuditController{Audit: audit}
}

func auditFilter(ctx *fiber.Ctx) (repositories.AuditFilter, error) {
	f := repositories.AuditFilter{Action: strings.TrimSpace(ctx.Query("action"))}
	var err error
	if f.StockItemID, err = queryUint(ctx, "item_id"); err != nil {
		return f, err
	}
	if f.UserID, err = queryUint(ctx, "user_id"); err != nil {
		return f, err
	}
	if f.DepartmentID, err = queryUint(ctx, "department_id"); err != nil {
		return f, err
	}
	if f.PerformedByID, err = queryUint(ctx, "performed_by"); err != nil {
		return f, err
	}
	return f, nil
}

func (c *AuditController) List(ctx *fiber.Ctx) error {
	f, err := auditFilter(ctx)
	if err != nil {
		return err
	}
	page, perPage := queryPage(ctx)
	result, err := c.Audit.List(ctx.UserContext(), f, page, perPage)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Audit logs retrieved", result)
}

func (c *AuditController) Export(ctx *fiber.Ctx) error {
	f, err := auditFilter(ctx)
	if err != nil {
		return err
	}
	logs, err := c.Audit.ListAll(ctx.UserContext(), f)
	if err != nil {
		return err
	}
	w, err := report.AuditLogs(logs)
	if err != nil {
		return err
	}
	return sendWorkbook(ctx, w, "audit_logs")
}
