package warehouse

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

// Service provides business logic for the Warehouse catalog.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new Warehouse service.
func NewService(repo Repository, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, numerator: numerator, txManager: txManager}
}

// Create creates a warehouse, generating a code when absent.
func (s *Service) Create(ctx context.Context, wh *Warehouse) error {
	if err := wh.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if wh.Code == "" {
			code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("WH"), time.Now())
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			wh.Code = code
		}

		if wh.IsDefault {
			if err := s.repo.ClearDefault(ctx); err != nil {
				return fmt.Errorf("clear default: %w", err)
			}
		}

		if err := s.repo.Create(ctx, wh); err != nil {
			return fmt.Errorf("create warehouse: %w", err)
		}

		logger.Info(ctx, "warehouse created", "warehouse_id", wh.ID, "name", wh.Name)
		return nil
	})
}

// Update updates a warehouse.
func (s *Service) Update(ctx context.Context, wh *Warehouse) error {
	if err := wh.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if wh.IsDefault {
			if err := s.repo.ClearDefault(ctx); err != nil {
				return fmt.Errorf("clear default: %w", err)
			}
		}
		return s.repo.Update(ctx, wh)
	})
}

// GetByID retrieves a warehouse.
func (s *Service) GetByID(ctx context.Context, whID id.ID) (*Warehouse, error) {
	wh, err := s.repo.GetByID(ctx, whID)
	if err != nil {
		return nil, apperror.NewNotFound("warehouse", whID.String())
	}
	return wh, nil
}

// List lists warehouses.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]Warehouse, error) {
	return s.repo.List(ctx, includeInactive)
}

// GetDefault returns the default issue warehouse.
func (s *Service) GetDefault(ctx context.Context) (*Warehouse, error) {
	wh, err := s.repo.GetDefault(ctx)
	if err != nil {
		return nil, apperror.NewNotFound("warehouse", "default")
	}
	return wh, nil
}
