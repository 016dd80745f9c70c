package dto

import (
	"woodline/internal/core/types"
)

// ListPaymentsRequest for GET /payments.
type ListPaymentsRequest struct {
	PaginationRequest
	DateRangeRequest
	CustomerID string `form:"customerId"`
	SaleID     string `form:"saleId"`
	Kind       string `form:"kind"`
}

// ListOpsRequest for GET /ledger/ops.
type ListOpsRequest struct {
	PaginationRequest
	DateRangeRequest
	Register string `form:"register"`
	Type     string `form:"type"`
}

// WithdrawRequest for POST /ledger/withdrawals.
type WithdrawRequest struct {
	Register  string      `json:"register" binding:"required"`
	RefID     string      `json:"refId"`
	AmountUZS types.Money `json:"amountUzs"`
	AmountUSD types.Money `json:"amountUsd"`
}

// ListExpensesRequest for GET /expenses.
type ListExpensesRequest struct {
	PaginationRequest
	DateRangeRequest
	CategoryID string `form:"categoryId"`
}

// CreateExpenseCategoryRequest for POST /expenses/categories.
type CreateExpenseCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}
