package controllers

import (
	"stock-app/services"

	"github.com/gofiber/fiber/v2"
)

type ReferenceController struct {
	Departments *services.DepartmentService
	Categories  *services.CategoryService
}

func NewReferenceController(departments *services.DepartmentService, categories *services.CategoryService) *ReferenceController {
	return &ReferenceController{Departments: departments, Categories: categories}
}

func (c *ReferenceController) ListDepartments(ctx *fiber.Ctx) error {
	departments, err := c.Departments.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Departments retrieved", departments)
}

func (c *ReferenceController) ListCategories(ctx *fiber.Ctx) error {
	categories, err := c.Categories.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Categories retrieved", categories)
}

func (c *ReferenceController) CreateCategory(ctx *fiber.Ctx) error {
	var input services.CategoryRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}
	category, err := c.Categories.Create(ctx.UserContext(), input)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusCreated, "Category created", category)
}

func (c *ReferenceController) UpdateCategory(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var input services.CategoryRequest
	if err := parseBody(ctx, &input); err != nil {
		return err
	}
	category, err := c.Categories.Update(ctx.UserContext(), id, input)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Category updated", category)
}

func (c *ReferenceController) DeleteCategory(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.Categories.Delete(ctx.UserContext(), id); err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Category deleted", nil)
}
