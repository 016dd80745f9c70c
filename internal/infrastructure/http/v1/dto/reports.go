package dto

import (
	"time"

	"woodline/internal/domain/reports"
)

// PeriodRequest for report endpoints.
type PeriodRequest struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// ToPeriod converts to a reporting period.
func (r PeriodRequest) ToPeriod() reports.Period {
	return reports.Period{From: r.From, To: r.To}
}

// TopProductsRequest for GET /reports/top-products.
type TopProductsRequest struct {
	PeriodRequest
	Limit int `form:"limit"`
}

// CustomerDebtsRequest for GET /reports/customer-debts.
// MinDebtUZS is a decimal string to keep form binding simple.
type CustomerDebtsRequest struct {
	MinDebtUZS string `form:"minDebtUzs"`
}
