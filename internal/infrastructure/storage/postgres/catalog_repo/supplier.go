package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"woodline/internal/domain/catalogs/supplier"
	"woodline/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

var _ supplier.Repository = (*SupplierRepo)(nil)

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// List returns suppliers matching the search with a total count.
func (r *SupplierRepo) List(ctx context.Context, search string, limit, offset int) ([]supplier.Supplier, int, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false})

	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"phone": pattern},
		})
	}

	total, err := r.countFor(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	q = q.OrderBy("name")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	var items []supplier.Supplier
	if err := r.scanList(ctx, q, &items); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
