// Package expense provides expense categories and entries.
// Every entry withdraws from a cash register through the ledger, so
// spending and till balances never drift apart.
package expense

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
	"woodline/internal/domain/ledger"
)

// StockIntakeCategory is the reserved category purchases post into.
// It is provisioned automatically and cannot be deleted.
const StockIntakeCategory = "stock intake"

// Category groups expenses for reporting.
type Category struct {
	entity.Catalog

	// IsSystem categories are provisioned by the application and
	// protected from deletion.
	IsSystem bool `db:"is_system" json:"isSystem"`
}

// NewCategory creates a category.
func NewCategory(name string) *Category {
	return &Category{Catalog: entity.NewCatalog("", name)}
}

// Entry is one expense.
type Entry struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	CategoryID id.ID  `db:"category_id" json:"categoryId"`
	Register   ledger.Register `db:"register" json:"register"`

	AmountUZS types.Money `db:"amount_uzs" json:"amountUzs"`
	AmountUSD types.Money `db:"amount_usd" json:"amountUsd"`

	// RefID links system entries to their source document (purchase).
	RefID *id.ID `db:"ref_id" json:"refId,omitempty"`

	Comment   string    `db:"comment" json:"comment,omitempty"`
	CreatedBy id.ID     `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks the entry.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.CategoryID) {
		return apperror.NewValidation("category is required").WithDetail("field", "categoryId")
	}
	if e.AmountUZS.IsNegative() || e.AmountUSD.IsNegative() {
		return apperror.NewValidation("expense amounts cannot be negative")
	}
	if e.AmountUZS.IsZero() && e.AmountUSD.IsZero() {
		return apperror.NewValidation("expense must carry an amount")
	}
	return nil
}
