package expense

import (
	"context"
	"fmt"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
	"woodline/internal/core/types"
	"woodline/internal/domain/ledger"
	"woodline/pkg/logger"
)

// CreateInput is an expense registration request.
type CreateInput struct {
	CategoryID id.ID       `json:"categoryId"`
	AmountUZS  types.Money `json:"amountUzs"`
	AmountUSD  types.Money `json:"amountUsd"`
	Comment    string      `json:"comment,omitempty"`
}

// Service provides expense logic.
type Service struct {
	repo      Repository
	ledgerSvc *ledger.Service
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new expense service.
func NewService(repo Repository, ledgerSvc *ledger.Service, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, ledgerSvc: ledgerSvc, numerator: numerator, txManager: txManager}
}

// Create registers an expense and withdraws it from the actor's
// register in one transaction.
func (s *Service) Create(ctx context.Context, actor ledger.Actor, input CreateInput) (*Entry, error) {
	e := &Entry{
		ID:         id.New(),
		CategoryID: input.CategoryID,
		Register:   ledger.RegisterForRole(actor.Role),
		AmountUZS:  input.AmountUZS,
		AmountUSD:  input.AmountUSD,
		Comment:    input.Comment,
		CreatedBy:  actor.UserID,
		CreatedAt:  time.Now(),
	}
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCategory(ctx, input.CategoryID); err != nil {
		return nil, apperror.NewNotFound("expense category", input.CategoryID.String())
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("E"), e.CreatedAt)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		e.Number = number

		if err := s.repo.CreateEntry(ctx, e); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}

		if _, err := s.ledgerSvc.Withdraw(ctx, actor, e.Register, e.ID, e.AmountUZS, e.AmountUSD); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "expense registered",
		"entry_id", e.ID,
		"number", e.Number,
		"register", e.Register,
		"amount_uzs", e.AmountUZS)

	return e, nil
}

// RecordIntakeExpense posts a purchase's cash outflow into the reserved
// stock intake category, inside the caller's transaction.
func (s *Service) RecordIntakeExpense(ctx context.Context, actor ledger.Actor, purchaseID id.ID, amountUZS, amountUSD types.Money, comment string) (*Entry, error) {
	category, err := s.EnsureStockIntakeCategory(ctx)
	if err != nil {
		return nil, err
	}

	e := &Entry{
		ID:         id.New(),
		CategoryID: category.ID,
		Register:   ledger.RegisterForRole(actor.Role),
		AmountUZS:  amountUZS,
		AmountUSD:  amountUSD,
		RefID:      &purchaseID,
		Comment:    comment,
		CreatedBy:  actor.UserID,
		CreatedAt:  time.Now(),
	}
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("E"), e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	e.Number = number

	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	if _, err := s.ledgerSvc.Withdraw(ctx, actor, e.Register, e.ID, e.AmountUZS, e.AmountUSD); err != nil {
		return nil, err
	}
	return e, nil
}

// EnsureStockIntakeCategory returns the reserved category, creating it
// on first use.
func (s *Service) EnsureStockIntakeCategory(ctx context.Context) (*Category, error) {
	category, err := s.repo.GetCategoryByName(ctx, StockIntakeCategory)
	if err == nil && category != nil {
		return category, nil
	}

	category = NewCategory(StockIntakeCategory)
	category.IsSystem = true
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("provision stock intake category: %w", err)
	}
	return category, nil
}

// CreateCategory creates a reporting category.
func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	if name == "" {
		return nil, apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if existing, err := s.repo.GetCategoryByName(ctx, name); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("expense category", "name", name)
	}

	category := NewCategory(name)
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a non-system category.
func (s *Service) DeleteCategory(ctx context.Context, categoryID id.ID) error {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return apperror.NewNotFound("expense category", categoryID.String())
	}
	if category.IsSystem {
		return apperror.NewForbidden("system categories cannot be deleted")
	}
	return s.repo.DeleteCategory(ctx, categoryID)
}

// ListCategories lists categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// ListEntries lists expenses.
func (s *Service) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, int, error) {
	return s.repo.ListEntries(ctx, filter)
}
