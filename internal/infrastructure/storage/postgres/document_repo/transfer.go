package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/domain/documents/transfer"
	"woodline/internal/infrastructure/storage/postgres"
)

const (
	transfersTable     = "doc_transfers"
	transferItemsTable = "doc_transfer_items"
)

var (
	transferColumns     = postgres.ExtractDBColumns[transfer.Transfer]()
	transferItemColumns = postgres.ExtractDBColumns[transfer.Item]()
)

// TransferRepo implements transfer.Repository.
type TransferRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ transfer.Repository = (*TransferRepo)(nil)

// NewTransferRepo creates a new transfer repository.
func NewTransferRepo(txManager *postgres.TxManager) *TransferRepo {
	return &TransferRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the transfer header and all items.
func (r *TransferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	data := postgres.StructToMap(t)
	headerData := make(map[string]any, len(transferColumns))
	for _, col := range transferColumns {
		if val, ok := data[col]; ok {
			headerData[col] = val
		}
	}

	q := r.builder.Insert(transfersTable).SetMap(headerData)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}

	if len(t.Items) == 0 {
		return nil
	}

	itemQ := r.builder.Insert(transferItemsTable).Columns(transferItemColumns...)
	for _, item := range t.Items {
		item.TransferID = t.ID
		itemData := postgres.StructToMap(&item)
		vals := make([]any, len(transferItemColumns))
		for i, col := range transferItemColumns {
			vals[i] = itemData[col]
		}
		itemQ = itemQ.Values(vals...)
	}

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transfer items: %w", err)
	}

	return nil
}

// GetByID retrieves a transfer with items.
func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	q := r.builder.Select(transferColumns...).
		From(transfersTable).
		Where(squirrel.Eq{"id": transferID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var t transfer.Transfer
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transfer", transferID.String())
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}

	itemQ := r.builder.Select(transferItemColumns...).
		From(transferItemsTable).
		Where(squirrel.Eq{"transfer_id": transferID}).
		OrderBy("line_id")

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &t.Items, sql, args...); err != nil {
		return nil, fmt.Errorf("load transfer items: %w", err)
	}

	return &t, nil
}

// List retrieves transfers, newest first. Items are not loaded.
func (r *TransferRepo) List(ctx context.Context, limit, offset int) ([]transfer.Transfer, int, error) {
	q := r.builder.Select(transferColumns...).
		From(transfersTable).
		Where(squirrel.Eq{"deletion_mark": false})

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
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

	var items []transfer.Transfer
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}

	return items, total, nil
}
