package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/domain/documents/writeoff"
	"woodline/internal/infrastructure/storage/postgres"
)

const (
	writeoffsTable     = "doc_writeoffs"
	writeoffItemsTable = "doc_writeoff_items"
)

var (
	writeoffColumns     = postgres.ExtractDBColumns[writeoff.WriteOff]()
	writeoffItemColumns = postgres.ExtractDBColumns[writeoff.Item]()
)

// WriteOffRepo implements writeoff.Repository.
type WriteOffRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ writeoff.Repository = (*WriteOffRepo)(nil)

// NewWriteOffRepo creates a new write-off repository.
func NewWriteOffRepo(txManager *postgres.TxManager) *WriteOffRepo {
	return &WriteOffRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the write-off header and all items.
func (r *WriteOffRepo) Create(ctx context.Context, w *writeoff.WriteOff) error {
	data := postgres.StructToMap(w)
	headerData := make(map[string]any, len(writeoffColumns))
	for _, col := range writeoffColumns {
		if val, ok := data[col]; ok {
			headerData[col] = val
		}
	}

	q := r.builder.Insert(writeoffsTable).SetMap(headerData)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert write-off: %w", err)
	}

	if len(w.Items) == 0 {
		return nil
	}

	itemQ := r.builder.Insert(writeoffItemsTable).Columns(writeoffItemColumns...)
	for _, item := range w.Items {
		item.WriteOffID = w.ID
		itemData := postgres.StructToMap(&item)
		vals := make([]any, len(writeoffItemColumns))
		for i, col := range writeoffItemColumns {
			vals[i] = itemData[col]
		}
		itemQ = itemQ.Values(vals...)
	}

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert write-off items: %w", err)
	}

	return nil
}

// GetByID retrieves a write-off with items.
func (r *WriteOffRepo) GetByID(ctx context.Context, writeoffID id.ID) (*writeoff.WriteOff, error) {
	q := r.builder.Select(writeoffColumns...).
		From(writeoffsTable).
		Where(squirrel.Eq{"id": writeoffID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var w writeoff.WriteOff
	if err := pgxscan.Get(ctx, querier, &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("write-off", writeoffID.String())
		}
		return nil, fmt.Errorf("get write-off: %w", err)
	}

	itemQ := r.builder.Select(writeoffItemColumns...).
		From(writeoffItemsTable).
		Where(squirrel.Eq{"writeoff_id": writeoffID}).
		OrderBy("line_id")

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &w.Items, sql, args...); err != nil {
		return nil, fmt.Errorf("load write-off items: %w", err)
	}

	return &w, nil
}

// List retrieves write-offs, newest first. Items are not loaded.
func (r *WriteOffRepo) List(ctx context.Context, limit, offset int) ([]writeoff.WriteOff, int, error) {
	q := r.builder.Select(writeoffColumns...).
		From(writeoffsTable).
		Where(squirrel.Eq{"deletion_mark": false})

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count write-offs: %w", err)
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

	var items []writeoff.WriteOff
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list write-offs: %w", err)
	}

	return items, total, nil
}
