package template

import (
	"go-docflow/internal/config"
	"go-docflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TemplateApi struct {
	controller *TemplateController
	config     *config.Config
}

func NewTemplateApi(controller *TemplateController, config *config.Config) *TemplateApi {
	return &TemplateApi{
		controller: controller,
		config:     config,
	}
}

func (h *TemplateApi) Setup(app *fiber.App) {
	templates := app.Group("/api/templates", middleware.AuthMiddleware(h.config.SkipAuth))

	templates.Get("/", h.controller.ListTemplates)
	templates.Get("/:id", h.controller.GetTemplate)

	// Template management changes every future document built from the
	// template, so mutations are admin gated.
	templates.Post("/", middleware.AdminOnly(), h.controller.CreateTemplate)
	templates.Put("/:id", middleware.AdminOnly(), h.controller.UpdateTemplate)
	templates.Delete("/:id", middleware.AdminOnly(), h.controller.DeleteTemplate)
}
