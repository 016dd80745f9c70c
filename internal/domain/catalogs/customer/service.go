package customer

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

// Service provides business logic for the Customer catalog.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new Customer service.
func NewService(repo Repository, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, numerator: numerator, txManager: txManager}
}

// Create creates a customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if c.Phone != "" {
		if existing, err := s.repo.GetByPhone(ctx, c.Phone); err == nil && existing != nil {
			return apperror.NewDuplicate("customer", "phone", c.Phone)
		}
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if c.Code == "" {
			code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CST"), time.Now())
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			c.Code = code
		}

		if err := s.repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}

		logger.Info(ctx, "customer created", "customer_id", c.ID, "name", c.Name)
		return nil
	})
}

// Update updates a customer.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	return c, nil
}

// List lists customers with filtering.
func (s *Service) List(ctx context.Context, filter Filter) ([]Customer, int, error) {
	return s.repo.List(ctx, filter)
}
