package handlers

import (
	"github.com/gin-gonic/gin"

	"woodline/internal/core/apperror"
	"woodline/internal/core/types"
	"woodline/internal/domain/reports"
	"woodline/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles reporting endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// SalesSummary handles GET /reports/sales/summary
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PeriodRequest
	if !h.BindQuery(c, &req) {
		return
	}

	summary, err := h.service.SalesSummary(ctx, req.ToPeriod())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// SalesByDay handles GET /reports/sales/by-day
func (h *ReportsHandler) SalesByDay(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PeriodRequest
	if !h.BindQuery(c, &req) {
		return
	}

	rows, err := h.service.SalesByDay(ctx, req.ToPeriod())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": rows})
}

// TopProducts handles GET /reports/sales/top-products
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TopProductsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	rows, err := h.service.TopProducts(ctx, req.ToPeriod(), req.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": rows})
}

// SalesByCashier handles GET /reports/sales/by-cashier
func (h *ReportsHandler) SalesByCashier(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PeriodRequest
	if !h.BindQuery(c, &req) {
		return
	}

	rows, err := h.service.SalesByCashier(ctx, req.ToPeriod())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": rows})
}

// CustomerDebts handles GET /reports/customers/debts
func (h *ReportsHandler) CustomerDebts(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CustomerDebtsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	minDebt := types.ZeroMoney()
	if req.MinDebtUZS != "" {
		parsed, err := types.NewMoneyFromString(req.MinDebtUZS)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid minDebtUzs").WithDetail("value", req.MinDebtUZS))
			return
		}
		minDebt = parsed
	}

	rows, err := h.service.CustomerDebts(ctx, minDebt)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": rows})
}
