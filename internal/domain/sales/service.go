package sales

import (
	"context"
	"fmt"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
	"woodline/internal/core/types"
	"woodline/internal/domain/access"
	"woodline/internal/domain/catalogs/product"
	"woodline/internal/domain/catalogs/rates"
	"woodline/internal/domain/catalogs/servicetype"
	"woodline/internal/domain/events"
	"woodline/internal/domain/stock"
	"woodline/internal/domain/workshop"
	"woodline/pkg/logger"
)

// Actor identifies who performs a sale operation.
type Actor struct {
	UserID id.ID
	Role   access.Role
}

// IsOwner reports owner privileges for floor price overrides.
func (a Actor) IsOwner() bool {
	return a.Role == access.RoleOwner
}

// CreateItemInput is one requested sale line.
type CreateItemInput struct {
	Kind      ItemKind       `json:"kind"`
	ProductID *id.ID         `json:"productId,omitempty"`
	Quantity  types.Quantity `json:"quantity"`

	// Service lines reference a catalog type or carry a free-text name.
	ServiceTypeID *id.ID `json:"serviceTypeId,omitempty"`
	ServiceName   string `json:"serviceName,omitempty"`

	// TechnicianID assigns a master to a service line up front. A
	// service line left unassigned routes the sale to the workshop.
	TechnicianID *id.ID `json:"technicianId,omitempty"`

	// UnitPriceUZS overrides the catalog price when positive.
	UnitPriceUZS types.Money `json:"unitPriceUzs"`

	// UnitPriceUSD is taken at face value when positive; otherwise the
	// dollar price is derived from the som price at the sale's rate.
	UnitPriceUSD types.Money `json:"unitPriceUsd"`

	// Description is carried onto the workshop task for service lines.
	Description string `json:"description,omitempty"`
}

// CreateInput is a sale creation request.
type CreateInput struct {
	CustomerID  id.ID             `json:"customerId"`
	WarehouseID id.ID             `json:"warehouseId"`
	Comment     string            `json:"comment,omitempty"`
	Items       []CreateItemInput `json:"items"`
}

// Service provides the sale workflow.
type Service struct {
	repo            Repository
	productRepo     product.Repository
	serviceTypeRepo servicetype.Repository
	stockSvc        *stock.Service
	workshopSvc     *workshop.Service
	numerator       numerator.Generator
	txManager       tx.Manager
	outbox          events.Outbox
}

// NewService creates a new sale service.
func NewService(
	repo Repository,
	productRepo product.Repository,
	serviceTypeRepo servicetype.Repository,
	stockSvc *stock.Service,
	workshopSvc *workshop.Service,
	numerator numerator.Generator,
	txManager tx.Manager,
	outbox events.Outbox,
) *Service {
	return &Service{
		repo:            repo,
		productRepo:     productRepo,
		serviceTypeRepo: serviceTypeRepo,
		stockSvc:        stockSvc,
		workshopSvc:     workshopSvc,
		numerator:       numerator,
		txManager:       txManager,
		outbox:          outbox,
	}
}

// Create opens a sale. The exchange rate is resolved by the caller and
// frozen on the sale; dollar prices are taken as given when supplied and
// derived at that rate otherwise. Non-owners cannot price a product
// below its floor. Stock is not touched until completion.
func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput, rate *rates.Rate) (*Sale, error) {
	if rate == nil {
		return nil, apperror.NewNoExchangeRate()
	}
	if len(input.Items) == 0 {
		return nil, apperror.NewValidation("sale must have at least one item")
	}

	sale := NewSale(input.CustomerID, input.WarehouseID, rate.RateUZS)
	sale.Comment = input.Comment
	sale.CreatedBy = actor.UserID
	sale.UpdatedBy = actor.UserID

	items, spawns, err := s.buildItems(ctx, actor, sale.ID, input.Items, rate)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	sale.HasWorkshop = len(spawns) > 0
	sale.RecalculateTotals()

	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("S"), sale.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		sale.Number = number

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		// One task per sale, no matter how many lines need the workshop.
		if len(spawns) > 0 {
			first := spawns[0]
			serviceTypeID := id.Nil()
			if first.item.ServiceTypeID != nil {
				serviceTypeID = *first.item.ServiceTypeID
			}
			_, err := s.workshopSvc.CreateForSale(ctx,
				sale.ID, first.item.LineID, sale.CustomerID,
				serviceTypeID, first.item.Name, first.description,
				actor.UserID)
			if err != nil {
				return fmt.Errorf("spawn workshop task: %w", err)
			}
		}

		err = s.outbox.Enqueue(ctx, events.New(events.TypeSaleCreated, events.RoomSales, events.SaleCreatedPayload{
			SaleID:      sale.ID,
			Number:      sale.Number,
			CustomerID:  sale.CustomerID,
			TotalUZS:    sale.TotalUZS.String(),
			TotalUSD:    sale.TotalUSD.String(),
			HasWorkshop: sale.HasWorkshop,
			CreatedBy:   actor.UserID,
		}))
		if err != nil {
			return fmt.Errorf("enqueue event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale created",
		"sale_id", sale.ID,
		"number", sale.Number,
		"total_uzs", sale.TotalUZS,
		"has_workshop", sale.HasWorkshop)

	return sale, nil
}

type workshopSpawn struct {
	item        SaleItem
	description string
}

func (s *Service) buildItems(ctx context.Context, actor Actor, saleID id.ID, inputs []CreateItemInput, rate *rates.Rate) ([]SaleItem, []workshopSpawn, error) {
	var productIDs, serviceIDs []id.ID
	for _, in := range inputs {
		switch in.Kind {
		case KindProduct:
			if in.ProductID == nil {
				return nil, nil, apperror.NewValidation("product is required for product lines")
			}
			productIDs = append(productIDs, *in.ProductID)
		case KindService:
			if in.ServiceTypeID == nil && in.ServiceName == "" {
				return nil, nil, apperror.NewValidation("service lines need a service type or a name")
			}
			if in.ServiceTypeID != nil {
				serviceIDs = append(serviceIDs, *in.ServiceTypeID)
			}
		default:
			return nil, nil, apperror.NewValidation("unknown item kind").WithDetail("kind", string(in.Kind))
		}
	}

	products := map[id.ID]*product.Product{}
	if len(productIDs) > 0 {
		var err error
		products, err = s.productRepo.GetByIDs(ctx, productIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("load products: %w", err)
		}
	}
	services := map[id.ID]*servicetype.ServiceType{}
	if len(serviceIDs) > 0 {
		var err error
		services, err = s.serviceTypeRepo.GetByIDs(ctx, serviceIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("load service types: %w", err)
		}
	}

	items := make([]SaleItem, 0, len(inputs))
	var spawns []workshopSpawn

	for _, in := range inputs {
		if !in.Quantity.IsPositive() {
			return nil, nil, apperror.NewValidation("item quantity must be positive")
		}

		item := SaleItem{
			LineID:   id.New(),
			SaleID:   saleID,
			Kind:     in.Kind,
			Quantity: in.Quantity,
		}

		switch in.Kind {
		case KindProduct:
			p, ok := products[*in.ProductID]
			if !ok {
				return nil, nil, apperror.NewNotFound("product", in.ProductID.String())
			}
			if !p.IsActive {
				return nil, nil, apperror.NewValidation("product is archived").WithDetail("product", p.Name)
			}

			unitPrice := p.PriceUZS
			if in.UnitPriceUZS.IsPositive() {
				unitPrice = in.UnitPriceUZS
			}
			if !actor.IsOwner() && p.BelowFloor(unitPrice) {
				return nil, nil, apperror.NewBelowMinimumPrice(p.Name, p.MinPriceUZS.String())
			}

			item.ProductID = in.ProductID
			item.Name = p.Name
			item.UnitPriceUZS = unitPrice

		case KindService:
			needsWorkshop := true
			if in.ServiceTypeID != nil {
				st, ok := services[*in.ServiceTypeID]
				if !ok {
					return nil, nil, apperror.NewNotFound("service type", in.ServiceTypeID.String())
				}
				if !st.IsActive {
					return nil, nil, apperror.NewValidation("service type is archived").WithDetail("service", st.Name)
				}

				unitPrice := st.BasePriceUZS
				if in.UnitPriceUZS.IsPositive() {
					unitPrice = in.UnitPriceUZS
				}

				item.ServiceTypeID = in.ServiceTypeID
				item.Name = st.Name
				item.UnitPriceUZS = unitPrice
				needsWorkshop = st.RequiresWorkshop
			} else {
				item.Name = in.ServiceName
				item.UnitPriceUZS = in.UnitPriceUZS
			}

			item.TechnicianID = in.TechnicianID
			item.SpawnsWorkshop = needsWorkshop && in.TechnicianID == nil
		}

		item.UnitPriceUSD = rate.ToUSD(item.UnitPriceUZS)
		if in.UnitPriceUSD.IsPositive() {
			item.UnitPriceUSD = in.UnitPriceUSD
		}
		item.TotalUZS = item.UnitPriceUZS.Mul(item.Quantity.Decimal())
		item.TotalUSD = item.UnitPriceUSD.Mul(item.Quantity.Decimal())

		items = append(items, item)
		if item.SpawnsWorkshop {
			spawns = append(spawns, workshopSpawn{item: item, description: in.Description})
		}
	}

	return items, spawns, nil
}

// Complete finalizes the sale and ships its stock. Product lines are
// issued atomically; a shortage on any line rolls the whole completion
// back. Low stock alerts ride the same transaction's outbox.
func (s *Service) Complete(ctx context.Context, actor Actor, saleID id.ID) (*Sale, error) {
	var sale *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetByIDForUpdate(ctx, saleID)
		if err != nil {
			return apperror.NewNotFound("sale", saleID.String())
		}
		if err := sl.MarkCompleted(); err != nil {
			return err
		}
		sl.UpdatedBy = actor.UserID

		productLines := sl.ProductLines()
		if len(productLines) > 0 {
			ids := make([]id.ID, 0, len(productLines))
			for _, line := range productLines {
				ids = append(ids, *line.ProductID)
			}
			productsByID, err := s.productRepo.GetByIDs(ctx, ids)
			if err != nil {
				return fmt.Errorf("load products: %w", err)
			}

			for _, line := range productLines {
				level, err := s.stockSvc.Issue(ctx, sl.ID, "Sale", sl.Date, sl.WarehouseID, *line.ProductID, line.Quantity)
				if err != nil {
					return err
				}

				p := productsByID[*line.ProductID]
				if p == nil || p.LowStockThreshold.IsZero() {
					continue
				}
				if level <= p.LowStockThreshold {
					err = s.outbox.Enqueue(ctx, events.New(events.TypeStockLow, events.RoomBoss, events.StockLowPayload{
						ProductID:   p.ID,
						ProductName: p.Name,
						WarehouseID: sl.WarehouseID,
						Remaining:   level.String(),
						Threshold:   p.LowStockThreshold.String(),
					}))
					if err != nil {
						return fmt.Errorf("enqueue event: %w", err)
					}
				}
			}
		}

		if err := s.repo.Update(ctx, sl); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}

		err = s.outbox.Enqueue(ctx, events.New(events.TypeSaleCompleted, events.RoomSales, events.SaleStatusPayload{
			SaleID:  sl.ID,
			Number:  sl.Number,
			Status:  string(sl.Status),
			ActorID: actor.UserID,
		}))
		if err != nil {
			return fmt.Errorf("enqueue event: %w", err)
		}

		sale = sl
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale completed", "sale_id", saleID, "number", sale.Number)
	return sale, nil
}

// Cancel voids an open sale. Stock was never issued, so there is nothing
// to return; unfinished workshop tasks are cancelled with it.
func (s *Service) Cancel(ctx context.Context, actor Actor, saleID id.ID) (*Sale, error) {
	var sale *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetByIDForUpdate(ctx, saleID)
		if err != nil {
			return apperror.NewNotFound("sale", saleID.String())
		}
		if err := sl.MarkCancelled(); err != nil {
			return err
		}
		sl.UpdatedBy = actor.UserID

		if sl.HasWorkshop {
			if err := s.workshopSvc.CancelForSale(ctx, sl.ID); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, sl); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}

		err = s.outbox.Enqueue(ctx, events.New(events.TypeSaleCancelled, events.RoomSales, events.SaleStatusPayload{
			SaleID:  sl.ID,
			Number:  sl.Number,
			Status:  string(sl.Status),
			ActorID: actor.UserID,
		}))
		if err != nil {
			return fmt.Errorf("enqueue event: %w", err)
		}

		sale = sl
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale cancelled", "sale_id", saleID, "number", sale.Number)
	return sale, nil
}

// GetByID retrieves a sale with items.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	sl, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return sl, nil
}

// List lists sales with filtering.
func (s *Service) List(ctx context.Context, filter Filter) ([]Sale, int, error) {
	return s.repo.List(ctx, filter)
}
