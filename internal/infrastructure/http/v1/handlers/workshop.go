package handlers

import (
	"github.com/gin-gonic/gin"

	"woodline/internal/domain/workshop"
	"woodline/internal/infrastructure/http/v1/dto"
)

// WorkshopHandler handles workshop task endpoints.
type WorkshopHandler struct {
	*BaseHandler
	service *workshop.Service
}

// NewWorkshopHandler creates a new workshop handler.
func NewWorkshopHandler(base *BaseHandler, service *workshop.Service) *WorkshopHandler {
	return &WorkshopHandler{BaseHandler: base, service: service}
}

// Start handles POST /workshop/tasks/:id/start
//
// The task is assigned to the calling master.
func (h *WorkshopHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	task, err := h.service.Start(ctx, taskID, actorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// Complete handles POST /workshop/tasks/:id/complete
func (h *WorkshopHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	task, err := h.service.Complete(ctx, taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// Get handles GET /workshop/tasks/:id
func (h *WorkshopHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	task, err := h.service.GetByID(ctx, taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// List handles GET /workshop/tasks
func (h *WorkshopHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListWorkshopTasksRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := workshop.Filter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" {
		status := workshop.Status(req.Status)
		filter.Status = &status
	}
	assigneeID, ok := h.ParseOptionalID(c, req.AssigneeID)
	if !ok {
		return
	}
	filter.AssigneeID = assigneeID
	saleID, ok := h.ParseOptionalID(c, req.SaleID)
	if !ok {
		return
	}
	filter.SaleID = saleID

	items, total, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}
