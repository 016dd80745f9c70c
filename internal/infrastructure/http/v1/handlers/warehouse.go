package handlers

import (
	"github.com/gin-gonic/gin"

	"woodline/internal/domain/catalogs/warehouse"
	"woodline/internal/infrastructure/http/v1/dto"
)

// WarehouseHandler handles warehouse catalog endpoints.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	wh := req.ToModel()
	if err := h.service.Create(ctx, wh); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, wh)
}

// Update handles PUT /catalog/warehouses/:id
func (h *WarehouseHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	whID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	wh, err := h.service.GetByID(ctx, whID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(wh)
	if err := h.service.Update(ctx, wh); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, wh)
}

// Get handles GET /catalog/warehouses/:id
func (h *WarehouseHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	whID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	wh, err := h.service.GetByID(ctx, whID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, wh)
}

// List handles GET /catalog/warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	includeInactive := c.Query("includeInactive") == "true"
	items, err := h.service.List(ctx, includeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// GetDefault handles GET /catalog/warehouses/default
func (h *WarehouseHandler) GetDefault(c *gin.Context) {
	ctx := c.Request.Context()

	wh, err := h.service.GetDefault(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, wh)
}
