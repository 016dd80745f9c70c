package handlers

import (
	"github.com/gin-gonic/gin"

	"woodline/internal/domain/catalogs/servicetype"
	"woodline/internal/infrastructure/http/v1/dto"
)

// ServiceTypeHandler handles service type catalog endpoints.
type ServiceTypeHandler struct {
	*BaseHandler
	service *servicetype.Service
}

// NewServiceTypeHandler creates a new service type handler.
func NewServiceTypeHandler(base *BaseHandler, service *servicetype.Service) *ServiceTypeHandler {
	return &ServiceTypeHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/service-types
func (h *ServiceTypeHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateServiceTypeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	st := req.ToModel()
	if err := h.service.Create(ctx, st); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, st)
}

// Update handles PUT /catalog/service-types/:id
func (h *ServiceTypeHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	serviceTypeID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateServiceTypeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	st, err := h.service.GetByID(ctx, serviceTypeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(st)
	if err := h.service.Update(ctx, st); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, st)
}

// Get handles GET /catalog/service-types/:id
func (h *ServiceTypeHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	serviceTypeID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	st, err := h.service.GetByID(ctx, serviceTypeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, st)
}

// List handles GET /catalog/service-types
func (h *ServiceTypeHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	includeInactive := c.Query("includeInactive") == "true"
	items, err := h.service.List(ctx, includeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}
