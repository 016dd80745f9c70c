package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"woodline/internal/core/apperror"
	"woodline/internal/domain/catalogs/rates"
	"woodline/internal/infrastructure/storage/postgres"
)

const ratesTable = "reg_exchange_rates"

// RatesRepo implements rates.Repository.
// The table is append-only: rows are inserted and never updated, so
// historical sales keep the rate they were priced with.
type RatesRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ rates.Repository = (*RatesRepo)(nil)

// NewRatesRepo creates a new exchange rate repository.
func NewRatesRepo(txManager *postgres.TxManager) *RatesRepo {
	return &RatesRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert appends a rate entry.
func (r *RatesRepo) Insert(ctx context.Context, rate *rates.Rate) error {
	q := r.builder.Insert(ratesTable).
		Columns("id", "rate_uzs", "effective_date", "set_by", "created_at").
		Values(rate.ID, rate.RateUZS, rate.EffectiveDate, rate.SetBy, rate.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert rate: %w", err)
	}
	return nil
}

// GetForDate returns the newest rate effective on or before the date.
func (r *RatesRepo) GetForDate(ctx context.Context, date time.Time) (*rates.Rate, error) {
	q := r.builder.
		Select("id", "rate_uzs", "effective_date", "set_by", "created_at").
		From(ratesTable).
		Where(squirrel.LtOrEq{"effective_date": date}).
		OrderBy("effective_date DESC", "created_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rate rates.Rate
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &rate, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("exchange rate", date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("get rate: %w", err)
	}

	return &rate, nil
}

// List returns rate history, newest first.
func (r *RatesRepo) List(ctx context.Context, limit int) ([]rates.Rate, error) {
	q := r.builder.
		Select("id", "rate_uzs", "effective_date", "set_by", "created_at").
		From(ratesTable).
		OrderBy("effective_date DESC", "created_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []rates.Rate
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}

	return items, nil
}
