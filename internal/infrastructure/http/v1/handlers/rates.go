package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"woodline/internal/domain/catalogs/rates"
	"woodline/internal/infrastructure/http/v1/dto"
)

// RatesHandler handles exchange rate endpoints.
type RatesHandler struct {
	*BaseHandler
	service *rates.Service
}

// NewRatesHandler creates a new rates handler.
func NewRatesHandler(base *BaseHandler, service *rates.Service) *RatesHandler {
	return &RatesHandler{BaseHandler: base, service: service}
}

// Set handles POST /catalog/rates
func (h *RatesHandler) Set(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}

	var req dto.SetRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	effectiveDate := req.EffectiveDate
	if effectiveDate.IsZero() {
		effectiveDate = time.Now()
	}

	rate, err := h.service.SetRate(ctx, req.RateUZS, effectiveDate, actorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, rate)
}

// Current handles GET /catalog/rates/current
func (h *RatesHandler) Current(c *gin.Context) {
	ctx := c.Request.Context()

	rate, err := h.service.Current(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rate)
}

// History handles GET /catalog/rates
func (h *RatesHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.ParseIntQuery(c, "limit", 30)
	items, err := h.service.History(ctx, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}
