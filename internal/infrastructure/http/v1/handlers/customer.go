package handlers

import (
	"github.com/gin-gonic/gin"

	"woodline/internal/domain/catalogs/customer"
	"woodline/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles customer catalog endpoints.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := req.ToModel()
	if err := h.service.Create(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cust)
}

// Update handles PUT /catalog/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust, err := h.service.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(cust)
	if err := h.service.Update(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}

// Get handles GET /catalog/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cust, err := h.service.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}

// List handles GET /catalog/customers
func (h *CustomerHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var pager dto.PaginationRequest
	if !h.BindQuery(c, &pager) {
		return
	}
	pager.Defaults()

	items, total, err := h.service.List(ctx, customer.Filter{
		Search: c.Query("search"),
		Limit:  pager.Limit,
		Offset: pager.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, pager.Limit, pager.Offset))
}
