package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"woodline/internal/core/id"
	"woodline/internal/domain/catalogs/servicetype"
	"woodline/internal/infrastructure/storage/postgres"
)

const serviceTypeTable = "cat_service_types"

// ServiceTypeRepo implements servicetype.Repository.
type ServiceTypeRepo struct {
	*BaseCatalogRepo[*servicetype.ServiceType]
}

var _ servicetype.Repository = (*ServiceTypeRepo)(nil)

// NewServiceTypeRepo creates a new service type repository.
func NewServiceTypeRepo(txManager *postgres.TxManager) *ServiceTypeRepo {
	return &ServiceTypeRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			serviceTypeTable,
			postgres.ExtractDBColumns[servicetype.ServiceType](),
			func() *servicetype.ServiceType { return &servicetype.ServiceType{} },
		),
	}
}

// GetByIDs loads service types by ID in one query.
func (r *ServiceTypeRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*servicetype.ServiceType, error) {
	result := make(map[id.ID]*servicetype.ServiceType, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": ids})

	var items []servicetype.ServiceType
	if err := r.scanList(ctx, q, &items); err != nil {
		return nil, err
	}

	for i := range items {
		result[items[i].ID] = &items[i]
	}
	return result, nil
}

// List returns service types, optionally including inactive ones.
func (r *ServiceTypeRepo) List(ctx context.Context, includeInactive bool) ([]servicetype.ServiceType, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name")

	if !includeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	var items []servicetype.ServiceType
	if err := r.scanList(ctx, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}
