package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/domain/documents/inventory"
	"woodline/internal/infrastructure/storage/postgres"
)

const (
	inventoryChecksTable = "doc_inventory_checks"
	inventoryItemsTable  = "doc_inventory_check_items"
)

var (
	inventoryCheckColumns = postgres.ExtractDBColumns[inventory.Check]()
	inventoryItemColumns  = postgres.ExtractDBColumns[inventory.Item]()
)

// InventoryCheckRepo implements inventory.Repository.
type InventoryCheckRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ inventory.Repository = (*InventoryCheckRepo)(nil)

// NewInventoryCheckRepo creates a new inventory check repository.
func NewInventoryCheckRepo(txManager *postgres.TxManager) *InventoryCheckRepo {
	return &InventoryCheckRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the check header and all counted lines.
func (r *InventoryCheckRepo) Create(ctx context.Context, c *inventory.Check) error {
	data := postgres.StructToMap(c)
	headerData := make(map[string]any, len(inventoryCheckColumns))
	for _, col := range inventoryCheckColumns {
		if val, ok := data[col]; ok {
			headerData[col] = val
		}
	}

	q := r.builder.Insert(inventoryChecksTable).SetMap(headerData)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert check: %w", err)
	}

	if len(c.Items) == 0 {
		return nil
	}

	itemQ := r.builder.Insert(inventoryItemsTable).Columns(inventoryItemColumns...)
	for _, item := range c.Items {
		item.CheckID = c.ID
		itemData := postgres.StructToMap(&item)
		vals := make([]any, len(inventoryItemColumns))
		for i, col := range inventoryItemColumns {
			vals[i] = itemData[col]
		}
		itemQ = itemQ.Values(vals...)
	}

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert check items: %w", err)
	}

	return nil
}

// Update updates the check header. Lines are written once at creation
// and never rewritten. Called at apply time, inside the apply
// transaction.
func (r *InventoryCheckRepo) Update(ctx context.Context, c *inventory.Check) error {
	data := postgres.StructToMap(c)
	setData := make(map[string]any, len(inventoryCheckColumns))
	for _, col := range inventoryCheckColumns {
		if col == "id" || col == "version" {
			continue
		}
		if val, ok := data[col]; ok {
			setData[col] = val
		}
	}

	q := r.builder.Update(inventoryChecksTable).
		SetMap(setData).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": c.ID}).
		Where(squirrel.Eq{"version": c.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update check: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("inventory check was modified concurrently").
			WithDetail("id", c.ID.String())
	}
	c.Version++

	return nil
}

// GetByID retrieves a check with items.
func (r *InventoryCheckRepo) GetByID(ctx context.Context, checkID id.ID) (*inventory.Check, error) {
	return r.get(ctx, checkID, false)
}

// GetByIDForUpdate locks the check header against a concurrent apply.
func (r *InventoryCheckRepo) GetByIDForUpdate(ctx context.Context, checkID id.ID) (*inventory.Check, error) {
	return r.get(ctx, checkID, true)
}

func (r *InventoryCheckRepo) get(ctx context.Context, checkID id.ID, forUpdate bool) (*inventory.Check, error) {
	q := r.builder.Select(inventoryCheckColumns...).
		From(inventoryChecksTable).
		Where(squirrel.Eq{"id": checkID})

	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var c inventory.Check
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory check", checkID.String())
		}
		return nil, fmt.Errorf("get check: %w", err)
	}

	itemQ := r.builder.Select(inventoryItemColumns...).
		From(inventoryItemsTable).
		Where(squirrel.Eq{"check_id": checkID}).
		OrderBy("line_id")

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &c.Items, sql, args...); err != nil {
		return nil, fmt.Errorf("load check items: %w", err)
	}

	return &c, nil
}

// List retrieves checks, newest first. Items are not loaded.
func (r *InventoryCheckRepo) List(ctx context.Context, limit, offset int) ([]inventory.Check, int, error) {
	q := r.builder.Select(inventoryCheckColumns...).
		From(inventoryChecksTable).
		Where(squirrel.Eq{"deletion_mark": false})

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count checks: %w", err)
	}

	q = q.OrderBy("date DESC", "number DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var items []inventory.Check
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list checks: %w", err)
	}

	return items, total, nil
}
