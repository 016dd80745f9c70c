package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	appctx "woodline/internal/core/context"
	"woodline/internal/domain/access"
	"woodline/internal/domain/catalogs/rates"
	"woodline/internal/domain/sales"
	"woodline/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles sale workflow endpoints.
type SalesHandler struct {
	*BaseHandler
	service  *sales.Service
	ratesSvc *rates.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service, ratesSvc *rates.Service) *SalesHandler {
	return &SalesHandler{BaseHandler: base, service: service, ratesSvc: ratesSvc}
}

func (h *SalesHandler) actor(c *gin.Context) (sales.Actor, bool) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return sales.Actor{}, false
	}
	return sales.Actor{
		UserID: actorID,
		Role:   access.Role(appctx.GetRole(c.Request.Context())),
	}, true
}

// Create handles POST /sales
func (h *SalesHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var input sales.CreateInput
	if !h.BindJSON(c, &input) {
		return
	}

	// Price at today's rate; the rate freezes on the sale.
	rate, err := h.ratesSvc.GetForDate(ctx, time.Now())
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Create(ctx, actor, input, rate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sale)
}

// Complete handles POST /sales/:id/complete
func (h *SalesHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.actor(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Complete(ctx, actor, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sale)
}

// Cancel handles POST /sales/:id/cancel
func (h *SalesHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.actor(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Cancel(ctx, actor, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sale)
}

// Get handles GET /sales/:id
func (h *SalesHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetByID(ctx, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sale)
}

// List handles GET /sales
func (h *SalesHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListSalesRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := sales.Filter{
		FromDate: req.From,
		ToDate:   req.To,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.Status != "" {
		status := sales.Status(req.Status)
		filter.Status = &status
	}
	customerID, ok := h.ParseOptionalID(c, req.CustomerID)
	if !ok {
		return
	}
	filter.CustomerID = customerID
	createdBy, ok := h.ParseOptionalID(c, req.CreatedBy)
	if !ok {
		return
	}
	filter.CreatedBy = createdBy

	items, total, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}
