package product

import (
	"context"
	"fmt"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
	"woodline/pkg/logger"
)

// Service provides business logic for the Product catalog.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new Product service.
func NewService(repo Repository, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, numerator: numerator, txManager: txManager}
}

// Create creates a product, generating an article code when absent.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if p.Code == "" {
			code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PRD"), time.Now())
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			p.Code = code
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		logger.Info(ctx, "product created", "product_id", p.ID, "name", p.Name)
		return nil
	})
}

// Update updates a product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

// GetByBarcode retrieves a product by barcode for the POS scanner.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	p, err := s.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, apperror.NewNotFound("product", barcode)
	}
	return p, nil
}

// List lists products with filtering.
func (s *Service) List(ctx context.Context, filter Filter) ([]Product, int, error) {
	return s.repo.List(ctx, filter)
}

// Archive soft-disables a product; history stays intact.
func (s *Service) Archive(ctx context.Context, productID id.ID) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return apperror.NewNotFound("product", productID.String())
	}
	p.IsActive = false
	return s.repo.Update(ctx, p)
}
