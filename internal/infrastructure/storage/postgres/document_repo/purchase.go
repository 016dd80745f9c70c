package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/domain/documents/purchase"
	"woodline/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "doc_purchases"
	purchaseItemsTable = "doc_purchase_items"
)

var (
	purchaseColumns     = postgres.ExtractDBColumns[purchase.Purchase]()
	purchaseItemColumns = postgres.ExtractDBColumns[purchase.Item]()
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the purchase header and all items.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	data := postgres.StructToMap(p)
	headerData := make(map[string]any, len(purchaseColumns))
	for _, col := range purchaseColumns {
		if val, ok := data[col]; ok {
			headerData[col] = val
		}
	}

	q := r.builder.Insert(purchasesTable).SetMap(headerData)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	if len(p.Items) == 0 {
		return nil
	}

	itemQ := r.builder.Insert(purchaseItemsTable).Columns(purchaseItemColumns...)
	for _, item := range p.Items {
		item.PurchaseID = p.ID
		itemData := postgres.StructToMap(&item)
		vals := make([]any, len(purchaseItemColumns))
		for i, col := range purchaseItemColumns {
			vals[i] = itemData[col]
		}
		itemQ = itemQ.Values(vals...)
	}

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase items: %w", err)
	}

	return nil
}

// GetByID retrieves a purchase with items.
func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	q := r.builder.Select(purchaseColumns...).
		From(purchasesTable).
		Where(squirrel.Eq{"id": purchaseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var p purchase.Purchase
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	itemQ := r.builder.Select(purchaseItemColumns...).
		From(purchaseItemsTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("line_id")

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &p.Items, sql, args...); err != nil {
		return nil, fmt.Errorf("load purchase items: %w", err)
	}

	return &p, nil
}

// List retrieves purchases, newest first. Items are not loaded.
func (r *PurchaseRepo) List(ctx context.Context, limit, offset int) ([]purchase.Purchase, int, error) {
	q := r.builder.Select(purchaseColumns...).
		From(purchasesTable).
		Where(squirrel.Eq{"deletion_mark": false})

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchases: %w", err)
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

	var items []purchase.Purchase
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list purchases: %w", err)
	}

	return items, total, nil
}
