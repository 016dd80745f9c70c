package handlers

import (
	"github.com/gin-gonic/gin"

	"woodline/internal/domain/catalogs/supplier"
	"woodline/internal/infrastructure/http/v1/dto"
)

// SupplierHandler handles supplier catalog endpoints.
type SupplierHandler struct {
	*BaseHandler
	service *supplier.Service
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return &SupplierHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sp := req.ToModel()
	if err := h.service.Create(ctx, sp); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sp)
}

// Update handles PUT /catalog/suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sp, err := h.service.GetByID(ctx, supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(sp)
	if err := h.service.Update(ctx, sp); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sp)
}

// Get handles GET /catalog/suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sp, err := h.service.GetByID(ctx, supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sp)
}

// List handles GET /catalog/suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var pager dto.PaginationRequest
	if !h.BindQuery(c, &pager) {
		return
	}
	pager.Defaults()

	items, total, err := h.service.List(ctx, c.Query("search"), pager.Limit, pager.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, pager.Limit, pager.Offset))
}
