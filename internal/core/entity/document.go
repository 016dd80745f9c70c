package entity

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
)

// Document is the base type for business transactions.
// Examples: Sale, Purchase, Transfer, WriteOff, InventoryCheck.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique per type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Comment is an optional user note
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document dated now.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
	}
}

// Validate implements the Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
