package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/domain/workshop"
	"woodline/internal/infrastructure/storage/postgres"
)

const workshopTasksTable = "doc_workshop_tasks"

var workshopTaskColumns = postgres.ExtractDBColumns[workshop.Task]()

// WorkshopTaskRepo implements workshop.Repository.
type WorkshopTaskRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ workshop.Repository = (*WorkshopTaskRepo)(nil)

// NewWorkshopTaskRepo creates a new workshop task repository.
func NewWorkshopTaskRepo(txManager *postgres.TxManager) *WorkshopTaskRepo {
	return &WorkshopTaskRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a task.
func (r *WorkshopTaskRepo) Create(ctx context.Context, t *workshop.Task) error {
	data := postgres.StructToMap(t)

	q := r.builder.Insert(workshopTasksTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update updates a task.
func (r *WorkshopTaskRepo) Update(ctx context.Context, t *workshop.Task) error {
	data := postgres.StructToMap(t)
	delete(data, "id")

	q := r.builder.Update(workshopTasksTable).
		SetMap(data).
		Where(squirrel.Eq{"id": t.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("workshop task", t.ID.String())
	}
	return nil
}

// GetByID retrieves a task.
func (r *WorkshopTaskRepo) GetByID(ctx context.Context, taskID id.ID) (*workshop.Task, error) {
	return r.get(ctx, taskID, false)
}

// GetByIDForUpdate locks the task row for a status transition.
func (r *WorkshopTaskRepo) GetByIDForUpdate(ctx context.Context, taskID id.ID) (*workshop.Task, error) {
	return r.get(ctx, taskID, true)
}

func (r *WorkshopTaskRepo) get(ctx context.Context, taskID id.ID, forUpdate bool) (*workshop.Task, error) {
	q := r.builder.Select(workshopTaskColumns...).
		From(workshopTasksTable).
		Where(squirrel.Eq{"id": taskID})

	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t workshop.Task
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("workshop task", taskID.String())
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return &t, nil
}

// GetBySale returns all tasks spawned by a sale.
func (r *WorkshopTaskRepo) GetBySale(ctx context.Context, saleID id.ID) ([]workshop.Task, error) {
	q := r.builder.Select(workshopTaskColumns...).
		From(workshopTasksTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tasks []workshop.Task
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &tasks, sql, args...); err != nil {
		return nil, fmt.Errorf("get tasks by sale: %w", err)
	}
	return tasks, nil
}

// List retrieves tasks matching the filter.
func (r *WorkshopTaskRepo) List(ctx context.Context, filter workshop.Filter) ([]workshop.Task, int, error) {
	q := r.builder.Select(workshopTaskColumns...).
		From(workshopTasksTable)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.AssigneeID != nil {
		q = q.Where(squirrel.Eq{"assignee_id": *filter.AssigneeID})
	}
	if filter.SaleID != nil {
		q = q.Where(squirrel.Eq{"sale_id": *filter.SaleID})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
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

	var tasks []workshop.Task
	if err := pgxscan.Select(ctx, querier, &tasks, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, total, nil
}
