// Package expense_repo provides the PostgreSQL expense repository.
package expense_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/domain/expense"
	"woodline/internal/infrastructure/storage/postgres"
)

const (
	categoriesTable = "cat_expense_categories"
	entriesTable    = "doc_expense_entries"
)

var (
	categoryColumns = postgres.ExtractDBColumns[expense.Category]()
	entryColumns    = postgres.ExtractDBColumns[expense.Entry]()
)

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ expense.Repository = (*ExpenseRepo)(nil)

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateCategory inserts a category.
func (r *ExpenseRepo) CreateCategory(ctx context.Context, c *expense.Category) error {
	data := postgres.StructToMap(c)

	q := r.builder.Insert(categoriesTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("expense category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category.
func (r *ExpenseRepo) GetCategory(ctx context.Context, categoryID id.ID) (*expense.Category, error) {
	return r.getCategory(ctx, squirrel.Eq{"id": categoryID}, categoryID.String())
}

// GetCategoryByName retrieves a category by its exact name.
func (r *ExpenseRepo) GetCategoryByName(ctx context.Context, name string) (*expense.Category, error) {
	return r.getCategory(ctx, squirrel.Eq{"name": name}, name)
}

func (r *ExpenseRepo) getCategory(ctx context.Context, cond squirrel.Eq, key string) (*expense.Category, error) {
	cond["deletion_mark"] = false
	q := r.builder.Select(categoryColumns...).
		From(categoriesTable).
		Where(cond)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c expense.Category
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("expense category", key)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// ListCategories returns all non-deleted categories.
func (r *ExpenseRepo) ListCategories(ctx context.Context) ([]expense.Category, error) {
	q := r.builder.Select(categoryColumns...).
		From(categoriesTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var categories []expense.Category
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &categories, sql, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory soft-deletes a category. System categories are refused.
func (r *ExpenseRepo) DeleteCategory(ctx context.Context, categoryID id.ID) error {
	q := r.builder.Update(categoriesTable).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": categoryID, "is_system": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either missing or a protected system category.
		if _, err := r.GetCategory(ctx, categoryID); err != nil {
			return err
		}
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "system categories cannot be deleted").
			WithDetail("categoryId", categoryID.String())
	}
	return nil
}

// CreateEntry inserts an expense entry.
func (r *ExpenseRepo) CreateEntry(ctx context.Context, e *expense.Entry) error {
	data := postgres.StructToMap(e)

	q := r.builder.Insert(entriesTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("expense entry", "number", e.Number)
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// ListEntries retrieves entries matching the filter, newest first.
func (r *ExpenseRepo) ListEntries(ctx context.Context, filter expense.EntryFilter) ([]expense.Entry, int, error) {
	q := r.builder.Select(entryColumns...).From(entriesTable)

	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	q = q.OrderBy("created_at DESC")
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

	var entries []expense.Entry
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}

	return entries, total, nil
}
