package document

import (
	"strconv"

	"go-docflow/internal/features/user"
	"go-docflow/pkg/apperrors"
	"go-docflow/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type DocumentController struct {
	Service  DocumentService
	UserRepo user.UserRepository
}

func NewDocumentController(service DocumentService, userRepo user.UserRepository) *DocumentController {
	return &DocumentController{Service: service, UserRepo: userRepo}
}

type CreateDocumentRequest struct {
	TemplateID string `json:"template_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

type UpdateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func claimsOf(ctx *fiber.Ctx) *utils.UserClaims {
	return ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
}

func fail(ctx *fiber.Ctx, err error) error {
	return ctx.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

// CreateDocument godoc
// @Summary Create a document from a template
// @Description Instantiate a draft document, freezing the template's approval chain
// @Tags documents
// @Accept json
// @Produce json
// @Param document body CreateDocumentRequest true "Document Input"
// @Success 201 {object} Document
// @Failure 404 {object} map[string]string "Template not found"
// @Router /api/documents [post]
func (c *DocumentController) CreateDocument(ctx *fiber.Ctx) error {
	var req CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := claimsOf(ctx)
	doc, err := c.Service.CreateDocument(ctx.UserContext(), req.TemplateID, claims.UserID, req.Title, req.Content)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(doc)
}

// GetDocument godoc
// @Summary Get a document
// @Description Permission-checked read of a document and its approval chain
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} Document
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Document not found"
// @Router /api/documents/{id} [get]
func (c *DocumentController) GetDocument(ctx *fiber.Ctx) error {
	claims := claimsOf(ctx)
	doc, err := c.Service.GetDocument(ctx.UserContext(), ctx.Params("id"), claims.UserID, claims.IsAdmin)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(doc)
}

// ListDocuments godoc
// @Summary List documents
// @Description box=mine lists the caller's documents; box=inbox lists documents awaiting the caller's approval
// @Tags documents
// @Produce json
// @Param box query string false "mine (default) or inbox"
// @Success 200 {array} Document
// @Router /api/documents [get]
func (c *DocumentController) ListDocuments(ctx *fiber.Ctx) error {
	claims := claimsOf(ctx)

	var (
		docs []Document
		err  error
	)
	if ctx.Query("box", "mine") == "inbox" {
		docs, err = c.Service.ListInbox(ctx.UserContext(), claims.UserID)
	} else {
		docs, err = c.Service.ListMine(ctx.UserContext(), claims.UserID)
	}
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(docs)
}

// UpdateDocument godoc
// @Summary Update a draft document
// @Description Author-only title/content edit, allowed while the document is DRAFT
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param document body UpdateDocumentRequest true "Document Input"
// @Success 200 {object} Document
// @Failure 422 {object} map[string]string "Not a draft"
// @Router /api/documents/{id} [put]
func (c *DocumentController) UpdateDocument(ctx *fiber.Ctx) error {
	var req UpdateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := claimsOf(ctx)
	doc, err := c.Service.UpdateDocument(ctx.UserContext(), ctx.Params("id"), claims.UserID, req.Title, req.Content)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(doc)
}

// DeleteDocument godoc
// @Summary Delete a document
// @Description Removes the document and its activity trail (explicit cascade)
// @Tags documents
// @Param id path string true "Document ID"
// @Success 204 {object} nil "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/documents/{id} [delete]
func (c *DocumentController) DeleteDocument(ctx *fiber.Ctx) error {
	claims := claimsOf(ctx)
	if err := c.Service.DeleteDocument(ctx.UserContext(), ctx.Params("id"), claims.UserID, claims.IsAdmin); err != nil {
		return fail(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// SubmitDocument godoc
// @Summary Submit a draft for approval
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} Document
// @Failure 403 {object} map[string]string "Only the author may submit"
// @Failure 422 {object} map[string]string "Not a draft"
// @Router /api/documents/{id}/submit [post]
func (c *DocumentController) SubmitDocument(ctx *fiber.Ctx) error {
	claims := claimsOf(ctx)
	doc, err := c.Service.SubmitDocument(ctx.UserContext(), ctx.Params("id"), claims.UserID)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(doc)
}

// ApproveTarget godoc
// @Summary Approve a target of the active stage
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Param order path int true "Stage Order"
// @Param targetId path string true "Target ID"
// @Success 200 {object} Document
// @Failure 403 {object} map[string]string "Actor does not resolve to the target"
// @Failure 409 {object} map[string]string "Target already approved"
// @Failure 422 {object} map[string]string "Wrong status or stage order"
// @Router /api/documents/{id}/stages/{order}/targets/{targetId}/approve [post]
func (c *DocumentController) ApproveTarget(ctx *fiber.Ctx) error {
	order, err := strconv.Atoi(ctx.Params("order"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid stage order"})
	}

	claims := claimsOf(ctx)
	doc, err := c.Service.ApproveDocument(ctx.UserContext(), ctx.Params("id"), claims.UserID, order, ctx.Params("targetId"))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(doc)
}

// RejectTarget godoc
// @Summary Reject the document at the active stage
// @Description A single rejection ends the document immediately
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param order path int true "Stage Order"
// @Param targetId path string true "Target ID"
// @Param body body RejectRequest true "Rejection Reason"
// @Success 200 {object} Document
// @Failure 403 {object} map[string]string "Actor does not resolve to the target"
// @Router /api/documents/{id}/stages/{order}/targets/{targetId}/reject [post]
func (c *DocumentController) RejectTarget(ctx *fiber.Ctx) error {
	order, err := strconv.Atoi(ctx.Params("order"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid stage order"})
	}

	var req RejectRequest
	_ = ctx.BodyParser(&req)

	claims := claimsOf(ctx)
	doc, err := c.Service.RejectDocument(ctx.UserContext(), ctx.Params("id"), claims.UserID, order, ctx.Params("targetId"), req.Reason)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(doc)
}

// ListActivities godoc
// @Summary List a document's activity trail
// @Description Chronological, append-only audit log of the document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/documents/{id}/activities [get]
func (c *DocumentController) ListActivities(ctx *fiber.Ctx) error {
	claims := claimsOf(ctx)
	activities, err := c.Service.ListActivities(ctx.UserContext(), ctx.Params("id"), claims.UserID, claims.IsAdmin)
	if err != nil {
		return fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"activities": activities,
		"actors":     c.actorNames(ctx, activities),
	})
}

// actorNames maps actor ids to usernames for display. Lookup failures leave
// the map partial; the trail itself is never withheld over a name.
func (c *DocumentController) actorNames(ctx *fiber.Ctx, activities []Activity) map[string]string {
	ids := make([]string, 0, len(activities))
	seen := make(map[string]bool, len(activities))
	for _, a := range activities {
		if !seen[a.ActorID] {
			seen[a.ActorID] = true
			ids = append(ids, a.ActorID)
		}
	}

	names := make(map[string]string, len(ids))
	users, err := c.UserRepo.FindByIDs(ctx.UserContext(), ids)
	if err != nil {
		return names
	}
	for _, u := range users {
		names[u.ID.Hex()] = u.Username
	}
	return names
}
