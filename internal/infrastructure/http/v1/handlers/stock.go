package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/domain/stock"
	"woodline/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock balance and movement endpoints.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// CreateReturn handles POST /stock/returns
func (h *StockHandler) CreateReturn(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}

	var req dto.CreateStockReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	warehouseID, ok := h.ParseOptionalID(c, req.WarehouseID)
	if !ok {
		return
	}
	productID, ok := h.ParseOptionalID(c, req.ProductID)
	if !ok {
		return
	}
	if warehouseID == nil || productID == nil {
		h.Error(c, apperror.NewValidation("warehouseId and productId are required"))
		return
	}

	level, err := h.service.ReturnToStock(ctx, actorID, time.Now(), *warehouseID, *productID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"warehouseId": *warehouseID,
		"productId":   *productID,
		"quantity":    req.Quantity,
		"level":       level,
	})
}

// GetBalance handles GET /stock/balances/:warehouseId/:productId
func (h *StockHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, ok := h.ParseID(c, "warehouseId")
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(ctx, warehouseID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, balance)
}

// GetWarehouseStock handles GET /stock/warehouses/:warehouseId
func (h *StockHandler) GetWarehouseStock(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, ok := h.ParseID(c, "warehouseId")
	if !ok {
		return
	}

	items, err := h.service.GetWarehouseStock(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// GetProductAvailability handles GET /stock/availability/:productId
func (h *StockHandler) GetProductAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	available, err := h.service.GetProductAvailability(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"productId": productID,
		"available": available,
	})
}

// GetMovementHistory handles GET /stock/movements/:productId
func (h *StockHandler) GetMovementHistory(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.ListMovementsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := stock.MovementFilter{
		FromDate: req.From,
		ToDate:   req.To,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	warehouseID, ok := h.ParseOptionalID(c, req.WarehouseID)
	if !ok {
		return
	}
	filter.WarehouseID = warehouseID
	if req.RecordType != "" {
		recordType := entity.RecordType(req.RecordType)
		filter.RecordType = &recordType
	}

	items, err := h.service.GetMovementHistory(ctx, productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// GetTurnover handles GET /stock/turnover
func (h *StockHandler) GetTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TurnoverRequest
	if !h.BindQuery(c, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		h.Error(c, apperror.NewValidation("from and to are required"))
		return
	}

	filter := stock.TurnoverFilter{
		FromDate: *req.From,
		ToDate:   *req.To,
	}
	warehouseID, ok := h.ParseOptionalID(c, req.WarehouseID)
	if !ok {
		return
	}
	filter.WarehouseID = warehouseID
	productID, ok := h.ParseOptionalID(c, req.ProductID)
	if !ok {
		return
	}
	filter.ProductID = productID

	turnover, err := h.service.GetTurnover(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, turnover)
}
