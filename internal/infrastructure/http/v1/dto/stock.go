package dto

import "woodline/internal/core/types"

// CreateStockReturnRequest for POST /stock/returns.
type CreateStockReturnRequest struct {
	WarehouseID string         `json:"warehouseId" binding:"required"`
	ProductID   string         `json:"productId" binding:"required"`
	Quantity    types.Quantity `json:"quantity" binding:"required"`
}

// ListMovementsRequest for GET /stock/movements/:productId.
type ListMovementsRequest struct {
	PaginationRequest
	DateRangeRequest
	WarehouseID string `form:"warehouseId"`
	RecordType  string `form:"recordType"`
}

// TurnoverRequest for GET /stock/turnover.
type TurnoverRequest struct {
	DateRangeRequest
	WarehouseID string `form:"warehouseId"`
	ProductID   string `form:"productId"`
}

// ListDocumentsRequest for plain document listings.
type ListDocumentsRequest struct {
	PaginationRequest
}
