// Package main provides a CLI tool for seeding the database with
// initial data: the owner account, the default warehouse, the system
// expense category, and optional demo catalogs.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
	"woodline/internal/domain/access"
	"woodline/internal/domain/auth"
	"woodline/internal/domain/catalogs/customer"
	"woodline/internal/domain/catalogs/product"
	"woodline/internal/domain/catalogs/rates"
	"woodline/internal/domain/catalogs/servicetype"
	"woodline/internal/domain/catalogs/warehouse"
	"woodline/internal/domain/expense"
	"woodline/internal/domain/ledger"
	"woodline/internal/infrastructure/numerator"
	"woodline/internal/infrastructure/storage/postgres"
	"woodline/internal/infrastructure/storage/postgres/auth_repo"
	"woodline/internal/infrastructure/storage/postgres/catalog_repo"
	"woodline/internal/infrastructure/storage/postgres/expense_repo"
	"woodline/internal/infrastructure/storage/postgres/ledger_repo"
	"woodline/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	gen := numerator.New(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	s := &seeder{
		txManager: txManager,
		gen:       gen,
		log:       log,
	}

	ownerID, err := s.seedOwner(ctx)
	if err != nil {
		log.Fatalw("failed to seed owner account", "error", err)
	}

	if err := s.seedDefaults(ctx, ownerID); err != nil {
		log.Fatalw("failed to seed defaults", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := s.seedDemoData(ctx); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

type seeder struct {
	txManager *postgres.TxManager
	gen       *numerator.Service
	log       *logger.Logger
}

// seedOwner creates the owner account unless one already exists.
func (s *seeder) seedOwner(ctx context.Context) (id.ID, error) {
	login := os.Getenv("OWNER_LOGIN")
	if login == "" {
		login = "owner"
	}
	password := os.Getenv("OWNER_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
	}

	userRepo := auth_repo.NewUserRepo(s.txManager)
	if existing, err := userRepo.GetByLogin(ctx, login); err == nil {
		s.log.Infow("owner account already exists", "login", login)
		return existing.ID, nil
	}

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("seed-only"))
	authService := auth.NewService(userRepo, s.txManager, jwtService, auth.DefaultServiceConfig())

	user, err := authService.CreateUser(ctx, auth.CreateUserRequest{
		Login:    login,
		Password: password,
		FullName: "Owner",
		Role:     access.RoleOwner,
	})
	if err != nil {
		return id.Nil(), err
	}

	s.log.Infow("owner account created", "login", login)
	return user.ID, nil
}

// seedDefaults creates the default warehouse, the system expense
// category and an initial exchange rate.
func (s *seeder) seedDefaults(ctx context.Context, ownerID id.ID) error {
	whRepo := catalog_repo.NewWarehouseRepo(s.txManager)
	whService := warehouse.NewService(whRepo, s.gen, s.txManager)

	if _, err := whService.GetDefault(ctx); err != nil {
		if !apperror.IsNotFound(err) {
			return err
		}
		wh := warehouse.New("", "Main Store", warehouse.TypeStore)
		wh.IsDefault = true
		if err := whService.Create(ctx, wh); err != nil {
			return err
		}
		s.log.Infow("default warehouse created", "name", wh.Name)
	}

	ledgerSvc := ledger.NewService(ledger_repo.NewLedgerRepo(s.txManager), s.gen, s.txManager, postgres.NewOutbox(s.txManager))
	expenseSvc := expense.NewService(expense_repo.NewExpenseRepo(s.txManager), ledgerSvc, s.gen, s.txManager)
	if _, err := expenseSvc.EnsureStockIntakeCategory(ctx); err != nil {
		return err
	}

	ratesSvc := rates.NewService(catalog_repo.NewRatesRepo(s.txManager))
	if _, err := ratesSvc.Current(ctx); err != nil {
		if apperror.Code(err) != apperror.CodeNoExchangeRate {
			return err
		}
		if _, err := ratesSvc.SetRate(ctx, types.NewMoney(12600), time.Now(), ownerID); err != nil {
			return err
		}
		s.log.Info("initial exchange rate set")
	}

	return nil
}

// seedDemoData creates a handful of catalog entries for development.
func (s *seeder) seedDemoData(ctx context.Context) error {
	productSvc := product.NewService(catalog_repo.NewProductRepo(s.txManager), s.gen, s.txManager)
	customerSvc := customer.NewService(catalog_repo.NewCustomerRepo(s.txManager), s.gen, s.txManager)
	serviceTypeSvc := servicetype.NewService(catalog_repo.NewServiceTypeRepo(s.txManager), s.gen, s.txManager)

	demoProducts := []struct {
		name     string
		category string
		price    float64
		minPrice float64
	}{
		{"Oak Dining Table", "tables", 4_500_000, 4_000_000},
		{"Walnut Wardrobe", "wardrobes", 7_800_000, 7_000_000},
		{"Pine Bookshelf", "shelving", 1_200_000, 1_000_000},
		{"Leather Sofa", "sofas", 9_500_000, 8_500_000},
	}
	for _, d := range demoProducts {
		p := product.New("", d.name)
		p.Category = d.category
		p.PriceUZS = types.NewMoney(d.price)
		p.MinPriceUZS = types.NewMoney(d.minPrice)
		if err := productSvc.Create(ctx, p); err != nil {
			if apperror.Code(err) == apperror.CodeDuplicate {
				continue
			}
			return err
		}
	}

	demoCustomers := []struct{ name, phone string }{
		{"Aziz Karimov", "+998901234567"},
		{"Dilnoza Rashidova", "+998907654321"},
	}
	for _, d := range demoCustomers {
		if err := customerSvc.Create(ctx, customer.New(d.name, d.phone)); err != nil {
			if apperror.Code(err) == apperror.CodeDuplicate {
				continue
			}
			return err
		}
	}

	demoServices := []struct {
		name     string
		price    float64
		workshop bool
	}{
		{"Furniture Assembly", 300_000, false},
		{"Custom Upholstery", 1_500_000, true},
		{"Frame Repair", 800_000, true},
	}
	for _, d := range demoServices {
		st := servicetype.New(d.name, types.NewMoney(d.price), d.workshop)
		if err := serviceTypeSvc.Create(ctx, st); err != nil {
			if apperror.Code(err) == apperror.CodeDuplicate {
				continue
			}
			return err
		}
	}

	s.log.Info("demo data seeded")
	return nil
}
