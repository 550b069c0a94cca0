package offline

import (
	"encoding/json"
	"errors"
	"strings"

	"fieldsync/core/logger"
	"fieldsync/core/queue"
	"fieldsync/core/syncengine"
	"fieldsync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the offline queue.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the queue routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/queue")
	group.Post("/", h.HandleSubmit)
	group.Get("/", h.HandleList)
	group.Get("/pending", h.HandlePending)
	group.Get("/conflicts", h.HandleConflicts)
	group.Get("/status", h.HandleStatus)
	group.Post("/sync", h.HandleSync)
	group.Put("/network", h.HandleNetwork)
	group.Delete("/synced", h.HandleClearSynced)
	group.Post("/:id/resolve", h.HandleResolve)
	group.Delete("/:id", h.HandleRemove)
}

// SubmitRequest is the body of POST /queue.
type SubmitRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload" swaggertype:"object"`
}

// ResolveRequest is the body of POST /queue/{id}/resolve.
type ResolveRequest struct {
	Resolution    string          `json:"resolution"`
	MergedPayload json.RawMessage `json:"merged_payload,omitempty" swaggertype:"object"`
}

// NetworkRequest is the body of PUT /queue/network.
type NetworkRequest struct {
	Online bool `json:"online"`
}

// HandleSubmit queues a mutation and syncs it when online.
// @Summary Submit Mutation
// @Description Durably queues a mutation. When the network flag is online a sync pass runs right after.
// @Tags queue
// @Accept json
// @Produce json
// @Param request body SubmitRequest true "Mutation"
// @Success 201 {object} SubmitResult "Queued Item"
// @Failure 400 {object} map[string]string "Invalid Type Or Payload"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /queue [post]
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	t, err := queue.ParseType(req.Type)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.service.Submit(c.UserContext(), t, req.Payload)
	if err != nil {
		return h.fail(c, l, "Submit failed", err)
	}
	l.Info("Mutation submitted",
		zap.String("id", result.Item.ID),
		zap.String("type", string(t)),
		zap.Bool("online", result.Online),
		zap.Bool("synced", result.Item.Synced))
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleList lists queued items.
// @Summary List Queue
// @Description Lists queued items in enqueue order, optionally filtered by sync state and type.
// @Tags queue
// @Produce json
// @Param synced query bool false "Sync state filter"
// @Param type query string false "Comma-separated item types"
// @Success 200 {array} queue.Item "Items"
// @Failure 400 {object} map[string]string "Invalid Filter"
// @Router /queue [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	var f queue.Filter
	if raw := c.Query("synced"); raw != "" {
		synced := utils.ToBool(raw)
		f.Synced = &synced
	}
	if raw := c.Query("type"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t, err := queue.ParseType(part)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			f.Types = append(f.Types, t)
		}
	}
	return c.JSON(h.service.Items(f))
}

// HandlePending lists items waiting for a sync.
// @Summary List Pending
// @Description Lists unsynced items without an open conflict, including items at the attempt cap.
// @Tags queue
// @Produce json
// @Success 200 {array} queue.Item "Items"
// @Router /queue/pending [get]
func (h *Handler) HandlePending(c *fiber.Ctx) error {
	return c.JSON(h.service.Pending())
}

// HandleConflicts lists items waiting for a decision.
// @Summary List Conflicts
// @Description Lists items with an unresolved conflict and both snapshots.
// @Tags queue
// @Produce json
// @Success 200 {array} queue.Item "Items"
// @Router /queue/conflicts [get]
func (h *Handler) HandleConflicts(c *fiber.Ctx) error {
	return c.JSON(h.service.Conflicts())
}

// HandleStatus returns the engine state.
// @Summary Sync Status
// @Description Aggregate status, last sync time, pending and conflict counts.
// @Tags queue
// @Produce json
// @Success 200 {object} Status "Status"
// @Router /queue/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleSync runs a sync pass, or previews it with dry_run.
// @Summary Run Sync
// @Description Runs one sync pass. With dry_run=true the pass is only predicted and nothing is written.
// @Tags queue
// @Produce json
// @Param dry_run query bool false "Preview only"
// @Success 200 {object} syncengine.PassResult "Pass Result"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /queue/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if c.QueryBool("dry_run", false) {
		plan, err := h.service.Preview(c.UserContext())
		if err != nil {
			return h.fail(c, l, "Sync preview failed", err)
		}
		return c.JSON(plan)
	}

	pass, err := h.service.Sync(c.UserContext())
	if err != nil {
		return h.fail(c, l, "Sync pass failed", err)
	}
	return c.JSON(pass)
}

// HandleResolve settles a conflict.
// @Summary Resolve Conflict
// @Description Records local, server or merged for a conflicted item. local and merged force-apply immediately.
// @Tags queue
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body ResolveRequest true "Resolution"
// @Success 200 {object} queue.Item "Item"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 404 {object} map[string]string "Item Not Found"
// @Failure 409 {object} map[string]string "Invalid Resolution"
// @Router /queue/{id}/resolve [post]
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	item, err := h.service.Resolve(c.UserContext(), c.Params("id"), queue.Resolution(req.Resolution), req.MergedPayload)
	if err != nil {
		return h.fail(c, l, "Resolve failed", err)
	}
	return c.JSON(item)
}

// HandleRemove deletes one item.
// @Summary Remove Item
// @Description Deletes an item regardless of its state. Unknown ids succeed.
// @Tags queue
// @Param id path string true "Item ID"
// @Success 204 "Removed"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /queue/{id} [delete]
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Remove(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, l, "Remove failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClearSynced deletes synced items.
// @Summary Clear Synced
// @Description Deletes every synced item. Repeating the call is harmless.
// @Tags queue
// @Produce json
// @Success 200 {object} map[string]int "Removed Count"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /queue/synced [delete]
func (h *Handler) HandleClearSynced(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	n, err := h.service.ClearSynced(c.UserContext())
	if err != nil {
		return h.fail(c, l, "Clear synced failed", err)
	}
	return c.JSON(fiber.Map{"removed": n})
}

// HandleNetwork sets the reachability flag.
// @Summary Set Network State
// @Description Sets the online flag. Going from offline to online runs a sync pass.
// @Tags queue
// @Accept json
// @Produce json
// @Param request body NetworkRequest true "Network State"
// @Success 200 {object} map[string]interface{} "Network State"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Router /queue/network [put]
func (h *Handler) HandleNetwork(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req NetworkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	online, pass, err := h.service.SetOnline(c.UserContext(), req.Online)
	if err != nil {
		return h.fail(c, l, "Sync after reconnect failed", err)
	}
	resp := fiber.Map{"online": online}
	if pass != nil {
		resp["pass"] = pass
	}
	return c.JSON(resp)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// errorStatus maps engine errors to HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, queue.ErrItemNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, syncengine.ErrInvalidResolution):
		return fiber.StatusConflict
	case errors.Is(err, queue.ErrUnknownType), errors.Is(err, queue.ErrInvalidPayload):
		return fiber.StatusBadRequest
	case errors.Is(err, queue.ErrNotLoaded), errors.Is(err, queue.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
