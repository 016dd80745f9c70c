// Package customer provides the Customer catalog.
package customer

import (
	"context"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
)

// Customer represents a buyer, walk-in or regular.
type Customer struct {
	entity.Catalog

	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
	Notes   string `db:"notes" json:"notes,omitempty"`
}

// New creates a new Customer.
func New(name, phone string) *Customer {
	c := &Customer{
		Catalog: entity.NewCatalog("", name),
		Phone:   phone,
	}
	return c
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if c.Name == "" && c.Phone == "" {
		return apperror.NewValidation("name or phone is required")
	}
	return nil
}
