package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"woodline/internal/core/id"
	"woodline/internal/domain/catalogs/product"
	"woodline/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetByBarcode finds an active product by barcode.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// GetByIDs loads products by ID in one query.
func (r *ProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*product.Product, error) {
	result := make(map[id.ID]*product.Product, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": productIDs})

	var items []product.Product
	if err := r.scanList(ctx, q, &items); err != nil {
		return nil, err
	}

	for i := range items {
		result[items[i].ID] = &items[i]
	}
	return result, nil
}

// List returns products matching the filter with a total count.
func (r *ProductRepo) List(ctx context.Context, filter product.Filter) ([]product.Product, int, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"barcode": pattern},
		})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	total, err := r.countFor(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	q = q.OrderBy("name")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	var items []product.Product
	if err := r.scanList(ctx, q, &items); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// UpdateCost records the latest purchase cost.
func (r *ProductRepo) UpdateCost(ctx context.Context, productID id.ID, cost string) error {
	q := r.Builder().
		Update(productTable).
		Set("cost_uzs", cost).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update cost: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update cost: %w", err)
	}

	return nil
}
