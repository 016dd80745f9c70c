// Package reports provides read-only management reporting.
// Reports aggregate committed data; they never hold locks or write.
package reports

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// Period is a half-open reporting interval [From, To).
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Validate checks the interval.
func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return apperror.NewValidation("period bounds are required")
	}
	if !p.To.After(p.From) {
		return apperror.NewValidation("period end must be after start")
	}
	return nil
}

// SalesSummary is the headline numbers for a period.
type SalesSummary struct {
	Period Period `json:"period"`

	SalesCount     int `json:"salesCount"`
	CompletedCount int `json:"completedCount"`
	CancelledCount int `json:"cancelledCount"`

	TotalUZS types.Money `json:"totalUzs"`
	TotalUSD types.Money `json:"totalUsd"`

	PaymentsUZS types.Money `json:"paymentsUzs"`
	PaymentsUSD types.Money `json:"paymentsUsd"`
}

// DayRow is one day in a sales-by-day breakdown.
type DayRow struct {
	Date     time.Time   `json:"date"`
	Count    int         `json:"count"`
	TotalUZS types.Money `json:"totalUzs"`
}

// ProductRow is one line of a top-sellers report.
type ProductRow struct {
	ProductID id.ID          `json:"productId"`
	Name      string         `json:"name"`
	Quantity  types.Quantity `json:"quantity"`
	TotalUZS  types.Money    `json:"totalUzs"`
}

// DebtRow is one customer with an outstanding balance.
type DebtRow struct {
	CustomerID id.ID       `json:"customerId"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone,omitempty"`
	SoldUZS    types.Money `json:"soldUzs"`
	PaidUZS    types.Money `json:"paidUzs"`
	DebtUZS    types.Money `json:"debtUzs"`
}

// CashierRow is one cashier's takings for a period.
type CashierRow struct {
	UserID   id.ID       `json:"userId"`
	Login    string      `json:"login"`
	Count    int         `json:"count"`
	TotalUZS types.Money `json:"totalUzs"`
}

// Repository defines the reporting queries.
type Repository interface {
	SalesSummary(ctx context.Context, p Period) (*SalesSummary, error)
	SalesByDay(ctx context.Context, p Period) ([]DayRow, error)
	TopProducts(ctx context.Context, p Period, limit int) ([]ProductRow, error)
	SalesByCashier(ctx context.Context, p Period) ([]CashierRow, error)
	CustomerDebts(ctx context.Context, minDebtUZS types.Money) ([]DebtRow, error)
}

// Service provides reporting with input validation.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SalesSummary returns headline numbers for the period.
func (s *Service) SalesSummary(ctx context.Context, p Period) (*SalesSummary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.SalesSummary(ctx, p)
}

// SalesByDay returns the daily breakdown for the period.
func (s *Service) SalesByDay(ctx context.Context, p Period) ([]DayRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.SalesByDay(ctx, p)
}

// TopProducts returns the best sellers for the period.
func (s *Service) TopProducts(ctx context.Context, p Period, limit int) ([]ProductRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.TopProducts(ctx, p, limit)
}

// SalesByCashier returns per-cashier takings for the period.
func (s *Service) SalesByCashier(ctx context.Context, p Period) ([]CashierRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.SalesByCashier(ctx, p)
}

// CustomerDebts returns customers owing at least the given amount.
func (s *Service) CustomerDebts(ctx context.Context, minDebtUZS types.Money) ([]DebtRow, error) {
	if minDebtUZS.IsNegative() {
		return nil, apperror.NewValidation("minimum debt cannot be negative")
	}
	return s.repo.CustomerDebts(ctx, minDebtUZS)
}
