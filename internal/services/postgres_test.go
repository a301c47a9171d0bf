package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"pharmacy_pos_backend/internal/config"
	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgresFixture runs against TEST_POSTGRES_DSN inside a throwaway schema.
func newPostgresFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	admin, err := database.Open(ctx, config.DatabaseConfig{Driver: config.DriverPostgres, DSN: dsn, MaxOpenConns: 2})
	require.NoError(t, err)
	schema := fmt.Sprintf("pos_test_%d", time.Now().UnixNano())
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		admin.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})

	return newFixtureOn(t, config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		DSN:          withSearchPath(dsn, schema),
		MaxOpenConns: 30,
	})
}

func withSearchPath(dsn, schema string) string {
	if strings.Contains(dsn, "://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}

func TestPostgresCheckoutConcurrentBuyersNeverOversell(t *testing.T) {
	f := newPostgresFixture(t)
	ctx := context.Background()
	const stock, buyers = 10, 25
	shared := f.lot(t, f.product(t, "Insulin pen"), stock)
	customerID := f.customer(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		receipts []string
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
				Items:      []models.CheckoutItem{item(shared, 1, "30.00")},
				CustomerID: &customerID,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				receipts = append(receipts, sale.ReceiptNumber)
			case errors.Is(err, ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, receipts, stock)
	assert.Equal(t, buyers-stock, rejected)

	qty, status := f.lotState(t, shared)
	assert.Equal(t, 0, qty)
	assert.Equal(t, models.LotStatusDepleted, status)
	assert.Equal(t, stock, f.count(t, "stock_movements WHERE movement_type = 'SALE'"))

	// 30.00 + 5.40 tax earns three points per sale.
	customer, err := f.customers.GetCustomerByID(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3*stock), customer.LoyaltyPoints)

	assertConsecutiveReceipts(t, receipts)
}

func TestPostgresCheckoutStartsReceiptSeriesOnce(t *testing.T) {
	f := newPostgresFixture(t)
	ctx := context.Background()
	const buyers = 20

	lots := make([]int64, buyers)
	for i := range lots {
		lots[i] = f.lot(t, f.product(t, fmt.Sprintf("Vitamin D %d", i)), 3)
	}
	require.Zero(t, f.count(t, "receipt_sequences"))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		receipts []string
	)
	start := make(chan struct{})
	for _, lotID := range lots {
		wg.Add(1)
		go func(lotID int64) {
			defer wg.Done()
			<-start
			sale, err := f.sales.Checkout(ctx, f.employeeID, models.CheckoutRequest{
				Items: []models.CheckoutItem{item(lotID, 1, "4.00")},
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			receipts = append(receipts, sale.ReceiptNumber)
			mu.Unlock()
		}(lotID)
	}
	close(start)
	wg.Wait()

	require.Len(t, receipts, buyers)
	assertConsecutiveReceipts(t, receipts)
	assert.Equal(t, 1, f.count(t, "receipt_sequences"))

	var last int64
	require.NoError(t, f.db.GetContext(ctx, &last, `SELECT last_value FROM receipt_sequences WHERE prefix = 'B001'`))
	assert.Equal(t, int64(buyers), last)
}

func assertConsecutiveReceipts(t *testing.T, receipts []string) {
	t.Helper()
	sort.Strings(receipts)
	for i, r := range receipts {
		want, err := FormatReceiptNumber("B001", int64(i+1), 6)
		require.NoError(t, err)
		assert.Equal(t, want, r)
	}
}
