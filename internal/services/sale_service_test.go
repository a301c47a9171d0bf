package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	rate := dec("0.18")

	totals := ComputeTotals([]models.CheckoutItem{item(1, 2, "5.50")}, decimal.Zero, rate)
	assert.True(t, totals.Subtotal.Equal(dec("11.00")), totals.Subtotal.String())
	assert.True(t, totals.Tax.Equal(dec("1.98")), totals.Tax.String())
	assert.True(t, totals.Total.Equal(dec("12.98")), totals.Total.String())

	totals = ComputeTotals([]models.CheckoutItem{item(1, 3, "0.35"), item(2, 1, "12.99")}, dec("1.00"), rate)
	assert.True(t, totals.Subtotal.Equal(dec("14.04")))
	assert.True(t, totals.Tax.Equal(dec("2.53")))
	assert.True(t, totals.Total.Equal(dec("15.57")))
	assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax).Sub(totals.Discount)))
}

func TestLoyaltyPointsFor(t *testing.T) {
	unit := decimal.NewFromInt(10)
	tests := []struct {
		total string
		want  int64
	}{
		{"47.30", 4},
		{"9.99", 0},
		{"10.00", 1},
		{"0", 0},
		{"1234.56", 123},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LoyaltyPointsFor(dec(tt.total), unit), tt.total)
	}
}

func TestCheckoutSingleItemWithoutCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Paracetamol 500mg"), 10)

	sale, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items: []models.CheckoutItem{item(lotID, 2, "5.50")},
	})
	require.NoError(t, err)

	assert.Equal(t, "B001-000001", sale.ReceiptNumber)
	assert.True(t, sale.Subtotal.Equal(dec("11.00")))
	assert.True(t, sale.Tax.Equal(dec("1.98")))
	assert.True(t, sale.Discount.IsZero())
	assert.True(t, sale.Total.Equal(dec("12.98")))
	assert.Equal(t, "CASH", sale.PaymentTypeCode)
	assert.Nil(t, sale.CustomerID)
	assert.Zero(t, sale.LoyaltyPointsEarned)
	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].LineTotal.Equal(dec("11.00")))
	assert.Equal(t, "Paracetamol 500mg", sale.Items[0].ProductName)

	qty, status := f.lotState(t, lotID)
	assert.Equal(t, 8, qty)
	assert.Equal(t, models.LotStatusAvailable, status)

	stored, err := f.sales.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.ReceiptNumber, stored.ReceiptNumber)
	assert.True(t, stored.Total.Equal(dec("12.98")))
	assert.Equal(t, "admin", stored.EmployeeUsername)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)

	movements, err := f.lots.ListMovements(ctx, lotID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, models.MovementSale, movements[1].MovementType)
	assert.Equal(t, -2, movements[1].QuantityChange)
	assert.Equal(t, 8, movements[1].QuantityAfter)
	require.NotNil(t, movements[1].SaleID)
	assert.Equal(t, sale.ID, *movements[1].SaleID)
}

func TestCheckoutInsufficientStockHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	lotID := f.lot(t, f.product(t, "Ibuprofen 400mg"), 3)

	_, err := f.sales.Checkout(context.Background(), f.employeeID, models.CheckoutRequest{
		Items: []models.CheckoutItem{item(lotID, 5, "4.00")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Ibuprofen 400mg", stockErr.ProductName)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Contains(t, err.Error(), "Ibuprofen 400mg")
	assert.Contains(t, err.Error(), "3 available")

	qty, status := f.lotState(t, lotID)
	assert.Equal(t, 3, qty)
	assert.Equal(t, models.LotStatusAvailable, status)
	assert.Zero(t, f.count(t, "sales"))
	assert.Zero(t, f.count(t, "sale_items"))
	assert.Zero(t, f.count(t, "receipt_sequences"))
}

func TestCheckoutContinuesExistingReceiptSeries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Loratadine 10mg"), 10)

	_, err := f.db.ExecContext(ctx, `INSERT INTO receipt_types (code, name, series) VALUES ('TICKET', 'Ticket', 'B002')`)
	require.NoError(t, err)
	_, err = f.settings.UpsertSetting(ctx, database.SettingDefaultReceiptType, models.UpsertSettingPayload{SettingValue: ptr("ticket")})
	require.NoError(t, err)

	// Sales issued before the counter row existed.
	_, err = f.db.ExecContext(ctx, f.db.Rebind(`INSERT INTO sales (receipt_number, receipt_type_id, payment_type_id, employee_id,
		subtotal, tax, discount, total, created_at)
		SELECT ?, rt.id, pt.id, ?, '1.00', '0.18', '0', '1.18', CURRENT_TIMESTAMP
		FROM receipt_types rt, payment_types pt WHERE rt.code = 'TICKET' AND pt.code = 'CASH'`), "B002-000041", f.employeeID)
	require.NoError(t, err)
	_, err = f.db.ExecContext(ctx, f.db.Rebind(`INSERT INTO sales (receipt_number, receipt_type_id, payment_type_id, employee_id,
		subtotal, tax, discount, total, created_at)
		SELECT ?, rt.id, pt.id, ?, '1.00', '0.18', '0', '1.18', CURRENT_TIMESTAMP
		FROM receipt_types rt, payment_types pt WHERE rt.code = 'TICKET' AND pt.code = 'CASH'`), "B002-000042", f.employeeID)
	require.NoError(t, err)

	sale, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "3.00")}})
	require.NoError(t, err)
	assert.Equal(t, "B002-000043", sale.ReceiptNumber)

	sale, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "3.00")}})
	require.NoError(t, err)
	assert.Equal(t, "B002-000044", sale.ReceiptNumber)
}

func TestCheckoutAwardsLoyaltyPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Omeprazole 20mg"), 5)
	customerID := f.customer(t)

	// 41.00 + 7.38 tax - 1.08 discount = 47.30
	sale, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items:      []models.CheckoutItem{item(lotID, 1, "41.00")},
		CustomerID: &customerID,
		Discount:   ptr(dec("1.08")),
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("47.30")), sale.Total.String())
	assert.Equal(t, int64(4), sale.LoyaltyPointsEarned)

	customer, err := f.customers.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), customer.LoyaltyPoints)

	_, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items:      []models.CheckoutItem{item(lotID, 1, "9.00")},
		CustomerID: &customerID,
	})
	require.NoError(t, err)

	customer, err = f.customers.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), customer.LoyaltyPoints) // 10.62 earns one more point
}

func TestCheckoutDepletesLot(t *testing.T) {
	f := newFixture(t)
	lotID := f.lot(t, f.product(t, "Amoxicillin 500mg"), 4)

	_, err := f.sales.Checkout(context.Background(), f.employeeID, models.CheckoutRequest{
		Items: []models.CheckoutItem{item(lotID, 4, "1.20")},
	})
	require.NoError(t, err)

	qty, status := f.lotState(t, lotID)
	assert.Equal(t, 0, qty)
	assert.Equal(t, models.LotStatusDepleted, status)

	_, err = f.sales.Checkout(context.Background(), f.employeeID, models.CheckoutRequest{
		Items: []models.CheckoutItem{item(lotID, 1, "1.20")},
	})
	assert.True(t, errors.Is(err, ErrInsufficientStock))
}

func TestCheckoutIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plenty := f.lot(t, f.product(t, "Cetirizine 10mg"), 10)
	scarce := f.lot(t, f.product(t, "Salbutamol inhaler"), 1)
	customerID := f.customer(t)

	_, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items:      []models.CheckoutItem{item(plenty, 3, "2.00"), item(scarce, 2, "15.00")},
		CustomerID: &customerID,
	})
	require.Error(t, err)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Salbutamol inhaler", stockErr.ProductName)

	qty, _ := f.lotState(t, plenty)
	assert.Equal(t, 10, qty)
	qty, _ = f.lotState(t, scarce)
	assert.Equal(t, 1, qty)
	assert.Zero(t, f.count(t, "sales"))
	assert.Zero(t, f.count(t, "sale_items"))
	assert.Equal(t, 2, f.count(t, "stock_movements")) // the two receipts only

	customer, err := f.customers.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.Zero(t, customer.LoyaltyPoints)
}

func TestCheckoutRepeatedLotLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Vitamin C 1g"), 5)

	_, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items: []models.CheckoutItem{item(lotID, 3, "1.00"), item(lotID, 3, "1.00")},
	})
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Available)

	sale, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items: []models.CheckoutItem{item(lotID, 2, "1.00"), item(lotID, 3, "0.90")},
	})
	require.NoError(t, err)
	assert.Len(t, sale.Items, 2)
	assert.True(t, sale.Subtotal.Equal(dec("4.70")))

	qty, status := f.lotState(t, lotID)
	assert.Equal(t, 0, qty)
	assert.Equal(t, models.LotStatusDepleted, status)
}

func TestCheckoutReferenceErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Diclofenac gel"), 5)

	_, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(999, 1, "1.00")}})
	assert.True(t, errors.Is(err, ErrLotNotFound))
	var lotErr *LotNotFoundError
	require.True(t, errors.As(err, &lotErr))
	assert.Equal(t, int64(999), lotErr.LotID)

	_, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items:      []models.CheckoutItem{item(lotID, 1, "1.00")},
		CustomerID: ptr(int64(4242)),
	})
	assert.True(t, errors.Is(err, ErrCustomerNotFound))

	_, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items:         []models.CheckoutItem{item(lotID, 1, "1.00")},
		PaymentTypeID: ptr(int64(4242)),
	})
	assert.True(t, errors.Is(err, ErrPaymentTypeNotFound))

	qty, _ := f.lotState(t, lotID)
	assert.Equal(t, 5, qty)
	assert.Zero(t, f.count(t, "sales"))
}

func TestCheckoutValidation(t *testing.T) {
	f := newFixture(t)
	lotID := f.lot(t, f.product(t, "Saline solution"), 5)

	tests := []struct {
		name string
		req  models.CheckoutRequest
		want error
	}{
		{"empty cart", models.CheckoutRequest{}, ErrEmptyCart},
		{"zero quantity", models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 0, "1.00")}}, ErrValidation},
		{"negative price", models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "-1.00")}}, ErrValidation},
		{"sub-cent price", models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "1.005")}}, ErrValidation},
		{"negative discount", models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "1.00")}, Discount: ptr(dec("-0.50"))}, ErrValidation},
		{"discount above total", models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "1.00")}, Discount: ptr(dec("1.19"))}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sales.Checkout(context.Background(), f.employeeID, tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Zero(t, f.count(t, "sales"))
}

func TestCheckoutDiscountEqualToTotalIsAllowed(t *testing.T) {
	f := newFixture(t)
	lotID := f.lot(t, f.product(t, "Cotton swabs"), 5)

	sale, err := f.sales.Checkout(context.Background(), f.employeeID, models.CheckoutRequest{
		Items:    []models.CheckoutItem{item(lotID, 1, "1.00")},
		Discount: ptr(dec("1.18")),
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.IsZero())
}

func TestCheckoutPaymentTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Thermometer"), 5)

	var cardID int64
	require.NoError(t, f.db.GetContext(ctx, &cardID, `SELECT id FROM payment_types WHERE code = 'CARD'`))

	sale, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items:         []models.CheckoutItem{item(lotID, 1, "20.00")},
		PaymentTypeID: &cardID,
	})
	require.NoError(t, err)
	assert.Equal(t, cardID, sale.PaymentTypeID)
	assert.Equal(t, "CARD", sale.PaymentTypeCode)

	_, err = f.settings.UpsertSetting(ctx, database.SettingDefaultPaymentType, models.UpsertSettingPayload{SettingValue: ptr("transfer")})
	require.NoError(t, err)
	sale, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "20.00")}})
	require.NoError(t, err)
	assert.Equal(t, "TRANSFER", sale.PaymentTypeCode)
}

func TestCheckoutMissingConfiguration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Gauze"), 5)

	require.NoError(t, f.settings.DeleteSetting(ctx, database.SettingDefaultPaymentType))
	_, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "1.00")}})
	assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)

	var cashID int64
	require.NoError(t, f.db.GetContext(ctx, &cashID, `SELECT id FROM payment_types WHERE code = 'CASH'`))
	_, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items:         []models.CheckoutItem{item(lotID, 1, "1.00")},
		PaymentTypeID: &cashID,
	})
	require.NoError(t, err)

	require.NoError(t, f.settings.DeleteSetting(ctx, database.SettingDefaultReceiptType))
	_, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
		Items:         []models.CheckoutItem{item(lotID, 1, "1.00")},
		PaymentTypeID: &cashID,
	})
	assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)

	qty, _ := f.lotState(t, lotID)
	assert.Equal(t, 4, qty)
}

func TestCheckoutRejectsDisabledDefaultPaymentType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Cotton swabs"), 5)

	_, err := f.db.ExecContext(ctx, `UPDATE payment_types SET is_active = FALSE WHERE code = 'CASH'`)
	require.NoError(t, err)

	_, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "1.00")}})
	assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
	assert.Zero(t, f.count(t, "sales"))

	qty, _ := f.lotState(t, lotID)
	assert.Equal(t, 5, qty)
}

func TestCheckoutIsNotIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Aspirin 100mg"), 10)
	req := models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 2, "3.00")}}

	first, err := f.sales.Checkout(ctx, f.employeeID, req)
	require.NoError(t, err)
	second, err := f.sales.Checkout(ctx, f.employeeID, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "B001-000001", first.ReceiptNumber)
	assert.Equal(t, "B001-000002", second.ReceiptNumber)
	qty, _ := f.lotState(t, lotID)
	assert.Equal(t, 6, qty)
}

func TestCheckoutConcurrentBuyersNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const stock, buyers = 10, 25
	shared := f.lot(t, f.product(t, "Insulin pen"), stock)
	other := f.lot(t, f.product(t, "Glucose strips"), buyers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		receipts []string
		sold     int
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items := []models.CheckoutItem{item(shared, 1, "30.00")}
			if i%2 == 0 {
				items = append(items, item(other, 1, "8.00"))
			}
			sale, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: items})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
				receipts = append(receipts, sale.ReceiptNumber)
			case errors.Is(err, ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, stock, sold)
	assert.Equal(t, buyers-stock, rejected)

	qty, status := f.lotState(t, shared)
	assert.Equal(t, 0, qty)
	assert.Equal(t, models.LotStatusDepleted, status)

	sort.Strings(receipts)
	for i, r := range receipts {
		want, err := FormatReceiptNumber("B001", int64(i+1), 6)
		require.NoError(t, err)
		assert.Equal(t, want, r)
	}

	// Receipt numbers follow insertion order.
	sales, total, err := f.sales.ListSales(ctx, models.SaleFilters{Pagination: models.Pagination{PageSize: 100}})
	require.NoError(t, err)
	assert.Equal(t, stock, total)
	for i := 1; i < len(sales); i++ {
		assert.Greater(t, sales[i-1].ID, sales[i].ID)
		assert.Greater(t, sales[i-1].ReceiptNumber, sales[i].ReceiptNumber)
	}
}

func TestCheckoutCancelledContext(t *testing.T) {
	f := newFixture(t)
	lotID := f.lot(t, f.product(t, "Eye drops"), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "6.00")}})
	require.Error(t, err)

	qty, _ := f.lotState(t, lotID)
	assert.Equal(t, 5, qty)
	assert.Zero(t, f.count(t, "sales"))
}

func TestListSalesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lotID := f.lot(t, f.product(t, "Zinc tablets"), 10)
	customerID := f.customer(t)

	_, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "2.00")}})
	require.NoError(t, err)
	_, err = f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{Items: []models.CheckoutItem{item(lotID, 1, "2.00")}, CustomerID: &customerID})
	require.NoError(t, err)

	sales, total, err := f.sales.ListSales(ctx, models.SaleFilters{CustomerID: &customerID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, sales, 1)
	assert.Equal(t, "B001-000002", sales[0].ReceiptNumber)

	_, total, err = f.sales.ListSales(ctx, models.SaleFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = f.sales.GetSale(ctx, 9999)
	assert.True(t, errors.Is(err, ErrSaleNotFound))
}
