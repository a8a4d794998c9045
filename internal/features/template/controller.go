package template

import (
	"go-docflow/pkg/apperrors"
	"go-docflow/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type TemplateController struct {
	Service TemplateService
}

func NewTemplateController(service TemplateService) *TemplateController {
	return &TemplateController{Service: service}
}

// CreateTemplate godoc
// @Summary Create a new document template
// @Description Create a template defining an ordered approval chain
// @Tags templates
// @Accept json
// @Produce json
// @Param template body Template true "Template Definition"
// @Success 201 {object} Template
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /api/templates [post]
func (c *TemplateController) CreateTemplate(ctx *fiber.Ctx) error {
	var input Template
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	created, err := c.Service.CreateTemplate(ctx.UserContext(), input, claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// GetTemplate godoc
// @Summary Get template by ID
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} Template
// @Failure 404 {object} map[string]string "Template not found"
// @Router /api/templates/{id} [get]
func (c *TemplateController) GetTemplate(ctx *fiber.Ctx) error {
	tpl, err := c.Service.GetTemplate(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(tpl)
}

// ListTemplates godoc
// @Summary List all templates
// @Tags templates
// @Produce json
// @Success 200 {array} Template
// @Router /api/templates [get]
func (c *TemplateController) ListTemplates(ctx *fiber.Ctx) error {
	templates, err := c.Service.ListTemplates(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(templates)
}

// UpdateTemplate godoc
// @Summary Update a template
// @Description Update a template definition. In-flight documents keep their frozen copy.
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param template body Template true "Template Definition"
// @Success 200 {object} map[string]string "Template updated successfully"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /api/templates/{id} [put]
func (c *TemplateController) UpdateTemplate(ctx *fiber.Ctx) error {
	var input Template
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateTemplate(ctx.UserContext(), ctx.Params("id"), input); err != nil {
		return ctx.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Template updated successfully"})
}

// DeleteTemplate godoc
// @Summary Delete a template
// @Tags templates
// @Param id path string true "Template ID"
// @Success 204 {object} nil "No Content"
// @Failure 404 {object} map[string]string "Template not found"
// @Router /api/templates/{id} [delete]
func (c *TemplateController) DeleteTemplate(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteTemplate(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
