package supplier

import (
	"context"
	"fmt"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
)

// Service provides business logic for the Supplier catalog.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new Supplier service.
func NewService(repo Repository, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, numerator: numerator, txManager: txManager}
}

// Create creates a supplier.
func (s *Service) Create(ctx context.Context, sp *Supplier) error {
	if err := sp.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if sp.Code == "" {
			code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SUP"), time.Now())
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			sp.Code = code
		}
		return s.repo.Create(ctx, sp)
	})
}

// Update updates a supplier.
func (s *Service) Update(ctx context.Context, sp *Supplier) error {
	if err := sp.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, sp)
}

// GetByID retrieves a supplier.
func (s *Service) GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	sp, err := s.repo.GetByID(ctx, supplierID)
	if err != nil {
		return nil, apperror.NewNotFound("supplier", supplierID.String())
	}
	return sp, nil
}

// List lists suppliers.
func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]Supplier, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}
