package servicetype

import (
	"context"
	"fmt"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
)

// Service provides business logic for the ServiceType catalog.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new ServiceType service.
func NewService(repo Repository, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, numerator: numerator, txManager: txManager}
}

// Create creates a service type.
func (s *Service) Create(ctx context.Context, st *ServiceType) error {
	if err := st.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if st.Code == "" {
			code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SVC"), time.Now())
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			st.Code = code
		}
		return s.repo.Create(ctx, st)
	})
}

// Update updates a service type.
func (s *Service) Update(ctx context.Context, st *ServiceType) error {
	if err := st.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, st)
}

// GetByID retrieves a service type.
func (s *Service) GetByID(ctx context.Context, serviceTypeID id.ID) (*ServiceType, error) {
	st, err := s.repo.GetByID(ctx, serviceTypeID)
	if err != nil {
		return nil, apperror.NewNotFound("service type", serviceTypeID.String())
	}
	return st, nil
}

// List lists service types.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]ServiceType, error) {
	return s.repo.List(ctx, includeInactive)
}
