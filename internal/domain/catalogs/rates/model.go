// Package rates provides the USD/UZS exchange rate register.
// Rates are append-only: setting a new rate never rewrites history, so
// past sales keep the rate they were priced with.
package rates

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// Rate is one exchange rate entry, in som per dollar.
type Rate struct {
	ID            id.ID       `db:"id" json:"id"`
	RateUZS       types.Money `db:"rate_uzs" json:"rateUzs"`
	EffectiveDate time.Time   `db:"effective_date" json:"effectiveDate"`
	SetBy         id.ID       `db:"set_by" json:"setBy"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
}

// New creates a rate entry effective from the given date.
func New(rateUZS types.Money, effectiveDate time.Time, setBy id.ID) *Rate {
	return &Rate{
		ID:            id.New(),
		RateUZS:       rateUZS,
		EffectiveDate: effectiveDate,
		SetBy:         setBy,
		CreatedAt:     time.Now().UTC(),
	}
}

// Validate checks the rate value.
func (r *Rate) Validate(ctx context.Context) error {
	if !r.RateUZS.IsPositive() {
		return apperror.NewValidation("rate must be positive").
			WithDetail("field", "rateUzs")
	}
	if r.EffectiveDate.IsZero() {
		return apperror.NewValidation("effective date is required").
			WithDetail("field", "effectiveDate")
	}
	return nil
}

// ToUSD converts a som amount at this rate, rounded to cents.
func (r *Rate) ToUSD(amountUZS types.Money) types.Money {
	return amountUZS.Div(r.RateUZS).Round(2)
}

// ToUZS converts a dollar amount at this rate, rounded to whole som.
func (r *Rate) ToUZS(amountUSD types.Money) types.Money {
	return amountUSD.Mul(r.RateUZS).Round(0)
}
