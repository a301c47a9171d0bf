package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pharmacy_pos_backend/internal/config"
	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/repositories"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db         *sqlx.DB
	sales      SaleService
	lots       StockLotService
	customers  CustomerService
	products   ProductService
	settings   SettingService
	auth       AuthService
	employeeID int64
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		TaxRate:                decimal.RequireFromString("0.18"),
		DefaultPaymentTypeCode: "CASH",
		DefaultReceiptTypeCode: "RECEIPT",
		SpendPerLoyaltyPoint:   decimal.NewFromInt(10),
		ReceiptNumberWidth:     6,
		MaxTxAttempts:          3,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, config.DatabaseConfig{Driver: config.DriverSQLite})
}

func newFixtureOn(t *testing.T, dbCfg config.DatabaseConfig) *fixture {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{
		Database: dbCfg,
		Checkout: testCheckoutConfig(),
		Admin:    config.AdminConfig{Username: "admin", Password: "admin-pass-123", FullName: "Test Admin"},
	}

	db, err := database.Open(ctx, cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.Seed(ctx, db, cfg))

	f := &fixture{db: db}
	require.NoError(t, db.GetContext(ctx, &f.employeeID, `SELECT id FROM employees WHERE username = 'admin'`))

	saleRepo := repositories.NewSaleRepository(db)
	lotRepo := repositories.NewStockLotRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	productRepo := repositories.NewProductRepository(db)
	lookupRepo := repositories.NewLookupRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	f.sales = NewSaleService(db, saleRepo, lotRepo, movementRepo, customerRepo, lookupRepo, settingRepo,
		repositories.NewReceiptSequenceRepository(), cfg.Checkout)
	f.lots = NewStockLotService(db, lotRepo, movementRepo, productRepo, cfg.Checkout.MaxTxAttempts)
	f.customers = NewCustomerService(customerRepo, db)
	f.products = NewProductService(productRepo, db)
	f.settings = NewSettingService(settingRepo, lookupRepo, db)
	f.auth = NewAuthService(repositories.NewAuthRepository(db), db, utils.NewJWTManager("test-secret", time.Hour))
	return f
}

func (f *fixture) product(t *testing.T, name string) int64 {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), models.CreateProductPayload{
		Name:      name,
		SalePrice: decimal.RequireFromString("5.50"),
	})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) lot(t *testing.T, productID int64, quantity int) int64 {
	t.Helper()
	lot, err := f.lots.ReceiveLot(context.Background(), f.employeeID, models.ReceiveLotPayload{
		ProductID:       productID,
		InitialQuantity: quantity,
		UnitCost:        decimal.RequireFromString("2.10"),
	})
	require.NoError(t, err)
	return lot.ID
}

func (f *fixture) customer(t *testing.T) int64 {
	t.Helper()
	c, err := f.customers.CreateCustomer(context.Background(), models.CreateCustomerPayload{FirstName: "Lucia", LastName: "Ramos"})
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) lotState(t *testing.T, id int64) (int, string) {
	t.Helper()
	lot, err := f.lots.GetLot(context.Background(), id)
	require.NoError(t, err)
	return lot.CurrentQuantity, lot.Status
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.GetContext(context.Background(), &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)))
	return n
}

func item(lotID int64, quantity int, price string) models.CheckoutItem {
	return models.CheckoutItem{LotID: lotID, Quantity: quantity, UnitPrice: decimal.RequireFromString(price)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}
