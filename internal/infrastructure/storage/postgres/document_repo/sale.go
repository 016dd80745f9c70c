// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/domain/sales"
	"woodline/internal/domain/workshop"
	"woodline/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleItemsTable = "doc_sale_items"
)

var saleColumns = postgres.ExtractDBColumns[sales.Sale]()

var saleItemColumns = postgres.ExtractDBColumns[sales.SaleItem]()

// SaleRepo implements sales.Repository and workshop.SaleFlagger.
type SaleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var (
	_ sales.Repository     = (*SaleRepo)(nil)
	_ workshop.SaleFlagger = (*SaleRepo)(nil)
)

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the sale header and all items.
func (r *SaleRepo) Create(ctx context.Context, s *sales.Sale) error {
	data := postgres.StructToMap(s)
	headerData := make(map[string]any, len(saleColumns))
	for _, col := range saleColumns {
		if val, ok := data[col]; ok {
			headerData[col] = val
		}
	}

	q := r.builder.Insert(salesTable).SetMap(headerData)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return r.insertItems(ctx, s.ID, s.Items)
}

func (r *SaleRepo) insertItems(ctx context.Context, saleID id.ID, items []sales.SaleItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(saleItemsTable).Columns(saleItemColumns...)
	for _, item := range items {
		item.SaleID = saleID
		data := postgres.StructToMap(&item)
		vals := make([]any, len(saleItemColumns))
		for i, col := range saleItemColumns {
			vals[i] = data[col]
		}
		q = q.Values(vals...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}
	return nil
}

// Update updates the sale header with optimistic locking.
func (r *SaleRepo) Update(ctx context.Context, s *sales.Sale) error {
	data := postgres.StructToMap(s)
	setData := make(map[string]any, len(saleColumns))
	for _, col := range saleColumns {
		if col == "id" || col == "version" {
			continue
		}
		if val, ok := data[col]; ok {
			setData[col] = val
		}
	}

	q := r.builder.Update(salesTable).
		SetMap(setData).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": s.ID}).
		Where(squirrel.Eq{"version": s.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("sale was modified concurrently").
			WithDetail("id", s.ID.String())
	}

	s.Version++
	return nil
}

// GetByID retrieves a sale with items.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	return r.get(ctx, saleID, false)
}

// GetByIDForUpdate locks the header row for a status transition.
func (r *SaleRepo) GetByIDForUpdate(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	return r.get(ctx, saleID, true)
}

func (r *SaleRepo) get(ctx context.Context, saleID id.ID, forUpdate bool) (*sales.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID})

	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var s sales.Sale
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	items, err := r.loadItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.Items = items

	return &s, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleID id.ID) ([]sales.SaleItem, error) {
	q := r.builder.Select(saleItemColumns...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var items []sales.SaleItem
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}
	return items, nil
}

// List retrieves sales matching the filter. Items are not loaded.
func (r *SaleRepo) List(ctx context.Context, filter sales.Filter) ([]sales.Sale, int, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.CreatedBy != nil {
		q = q.Where(squirrel.Eq{"created_by": filter.CreatedBy.String()})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"date": *filter.ToDate})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	q = q.OrderBy("date DESC", "number DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var items []sales.Sale
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}

	return items, total, nil
}

// MarkWorkshopDone flips the workshop flag when the last task closes.
// Implements workshop.SaleFlagger.
func (r *SaleRepo) MarkWorkshopDone(ctx context.Context, saleID id.ID) error {
	q := r.builder.Update(salesTable).
		Set("workshop_done", true).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark workshop done: %w", err)
	}
	return nil
}
