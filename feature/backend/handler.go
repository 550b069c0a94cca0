package backend

import (
	"errors"

	"fieldsync/core/logger"
	"fieldsync/core/remote"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for backend records.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the records routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/records")
	group.Get("/:collection/:id", h.HandleGet)
	group.Patch("/:collection/:id", h.HandlePatch)
	group.Post("/:collection", h.HandleInsert)
}

// HandleGet returns one record.
// @Summary Get Record
// @Description Returns the stored fields and last-modified time of a record.
// @Tags records
// @Produce json
// @Param collection path string true "Collection (work_orders, hazard_reports, inspections)"
// @Param id path string true "Record ID"
// @Success 200 {object} remote.Record "Record"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /records/{collection}/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	rec, err := h.service.Get(c.UserContext(), c.Params("collection"), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

// HandlePatch merges fields into a record, creating it if missing.
// @Summary Patch Record
// @Description Merges the given fields into a record. Fields not named are preserved and updated_at is bumped.
// @Tags records
// @Accept json
// @Produce json
// @Param collection path string true "Collection"
// @Param id path string true "Record ID"
// @Param fields body map[string]interface{} true "Fields"
// @Success 200 {object} remote.Record "Record"
// @Failure 400 {object} map[string]string "Validation Error"
// @Router /records/{collection}/{id} [patch]
func (h *Handler) HandlePatch(c *fiber.Ctx) error {
	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	rec, err := h.service.Patch(c.UserContext(), c.Params("collection"), c.Params("id"), fields)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

// HandleInsert creates a record.
// @Summary Insert Record
// @Description Creates a record. An id field is honored, otherwise one is generated.
// @Tags records
// @Accept json
// @Produce json
// @Param collection path string true "Collection"
// @Param fields body map[string]interface{} true "Fields"
// @Success 201 {object} remote.Record "Record"
// @Failure 400 {object} map[string]string "Validation Error"
// @Router /records/{collection} [post]
func (h *Handler) HandleInsert(c *fiber.Ctx) error {
	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	rec, err := h.service.Insert(c.UserContext(), c.Params("collection"), fields)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, remote.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, remote.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, remote.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	default:
		logger.WithRayID(h.service.logger, c).Error("Record request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
