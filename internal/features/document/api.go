package document

import (
	"go-docflow/internal/config"
	"go-docflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DocumentApi struct {
	controller *DocumentController
	config     *config.Config
}

func NewDocumentApi(controller *DocumentController, config *config.Config) *DocumentApi {
	return &DocumentApi{
		controller: controller,
		config:     config,
	}
}

func (h *DocumentApi) Setup(app *fiber.App) {
	documents := app.Group("/api/documents", middleware.AuthMiddleware(h.config.SkipAuth))

	documents.Post("/", h.controller.CreateDocument)
	documents.Get("/", h.controller.ListDocuments)
	documents.Get("/:id", h.controller.GetDocument)
	documents.Put("/:id", h.controller.UpdateDocument)
	documents.Delete("/:id", h.controller.DeleteDocument)

	documents.Post("/:id/submit", h.controller.SubmitDocument)
	documents.Post("/:id/stages/:order/targets/:targetId/approve", h.controller.ApproveTarget)
	documents.Post("/:id/stages/:order/targets/:targetId/reject", h.controller.RejectTarget)

	documents.Get("/:id/activities", h.controller.ListActivities)
}
