package rates

import (
	"context"
	"fmt"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
	"woodline/pkg/logger"
)

// Service provides exchange rate logic.
type Service struct {
	repo Repository
}

// NewService creates a new exchange rate service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetRate appends a new rate entry.
func (s *Service) SetRate(ctx context.Context, rateUZS types.Money, effectiveDate time.Time, setBy id.ID) (*Rate, error) {
	r := New(rateUZS, effectiveDate, setBy)
	if err := r.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("insert rate: %w", err)
	}

	logger.Info(ctx, "exchange rate set",
		"rate_uzs", r.RateUZS,
		"effective_date", r.EffectiveDate.Format("2006-01-02"),
		"set_by", setBy)
	return r, nil
}

// GetForDate resolves the rate for a business date. A missing rate is a
// hard error: sales cannot be priced without one.
func (s *Service) GetForDate(ctx context.Context, date time.Time) (*Rate, error) {
	r, err := s.repo.GetForDate(ctx, date)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNoExchangeRate()
		}
		return nil, fmt.Errorf("get rate: %w", err)
	}
	if r == nil {
		return nil, apperror.NewNoExchangeRate()
	}
	return r, nil
}

// Current resolves the rate for today.
func (s *Service) Current(ctx context.Context) (*Rate, error) {
	return s.GetForDate(ctx, time.Now())
}

// History returns recent rate entries.
func (s *Service) History(ctx context.Context, limit int) ([]Rate, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	return s.repo.List(ctx, limit)
}
