package transform

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// silverRow builds a fully-populated silver row for rollup tests.
func silverRow(txID, customer, category, date string, amount string) *warehousemodels.SilverSale {
	return &warehousemodels.SilverSale{
		TransactionID:   txID,
		ProductID:       "p-" + txID,
		ProductName:     strPtr("Wireless Mouse"),
		CustomerName:    strPtr(customer),
		Email:           strPtr(customer + "@example.com"),
		DeliveryAddress: strPtr("12 Analytical Way"),
		City:            strPtr("London"),
		State:           strPtr("LD"),
		ZipCode:         strPtr("10001"),
		Category:        strPtr(category),
		Quantity:        int32Ptr(2),
		Price:           decPtr("25.00"),
		Discount:        decPtr("5.00"),
		TotalAmount:     decPtr(amount),
		PaymentMethod:   strPtr("card"),
		TransactionDate: timePtr(date + " 10:30:00"),
		SourceFile:      "sales_1.csv",
		SourceSeq:       1,
	}
}

// TestDailySales_GroupsByDateAndCategory walks a two-transaction day through
// the rollup and checks every aggregate.
func TestDailySales_GroupsByDateAndCategory(t *testing.T) {
	refreshedAt := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := []*warehousemodels.SilverSale{
		silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "100.00"),
		silverRow("tx-2", "Grace Hopper", "Electronics", "2024-01-01", "50.00"),
	}

	out := DailySales(rows, refreshedAt)

	require.Len(t, out, 1)
	day := out[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), day.SaleDate)
	assert.Equal(t, "Electronics", day.Category)
	assert.Equal(t, uint64(2), day.TotalTransactions)
	assert.Equal(t, uint64(2), day.UniqueCustomers)
	assert.Equal(t, int64(4), day.TotalItemsSold)
	assert.True(t, day.TotalRevenue.Equal(decimal.RequireFromString("150.00")), day.TotalRevenue.String())
	assert.True(t, day.TotalDiscounts.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, day.AveragePrice.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, day.AverageTransactionValue.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, refreshedAt, day.RefreshedAt)
}

// TestDailySales_SplitsGroups verifies distinct dates and categories land in
// distinct groups, ordered by (sale_date, category).
func TestDailySales_SplitsGroups(t *testing.T) {
	rows := []*warehousemodels.SilverSale{
		silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-02", "10.00"),
		silverRow("tx-2", "Ada Lovelace", "Clothing", "2024-01-02", "20.00"),
		silverRow("tx-3", "Ada Lovelace", "Electronics", "2024-01-01", "30.00"),
	}

	out := DailySales(rows, time.Now().UTC())

	require.Len(t, out, 3)
	assert.Equal(t, "Electronics", out[0].Category)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), out[0].SaleDate)
	assert.Equal(t, "Clothing", out[1].Category)
	assert.Equal(t, "Electronics", out[2].Category)
}

// TestDailySales_NullGroupColumns verifies null dates and categories each
// collapse into a single group instead of fanning out.
func TestDailySales_NullGroupColumns(t *testing.T) {
	a := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "10.00")
	a.TransactionDate = nil
	a.Category = nil
	b := silverRow("tx-2", "Grace Hopper", "Electronics", "2024-01-01", "20.00")
	b.TransactionDate = nil
	b.Category = nil

	out := DailySales([]*warehousemodels.SilverSale{a, b}, time.Now().UTC())

	require.Len(t, out, 1)
	assert.True(t, out[0].SaleDate.IsZero())
	assert.Equal(t, "", out[0].Category)
	assert.Equal(t, uint64(2), out[0].TotalTransactions)
}

// TestDailySales_AverageSkipsNulls verifies averages divide by the non-null
// count, matching SQL AVG semantics.
func TestDailySales_AverageSkipsNulls(t *testing.T) {
	a := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "10.00")
	b := silverRow("tx-2", "Grace Hopper", "Electronics", "2024-01-01", "20.00")
	b.Price = nil

	out := DailySales([]*warehousemodels.SilverSale{a, b}, time.Now().UTC())

	require.Len(t, out, 1)
	// One non-null price of 25.00, so the average is 25.00 not 12.50.
	assert.True(t, out[0].AveragePrice.Equal(decimal.RequireFromString("25.00")))
}

// TestCustomerMetrics_Rollup checks the per-customer aggregates including the
// first and last purchase window.
func TestCustomerMetrics_Rollup(t *testing.T) {
	rows := []*warehousemodels.SilverSale{
		silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "100.00"),
		silverRow("tx-2", "Ada Lovelace", "Clothing", "2024-01-05", "50.00"),
		silverRow("tx-3", "Grace Hopper", "Electronics", "2024-01-03", "75.00"),
	}

	out := CustomerMetrics(rows, time.Now().UTC())

	require.Len(t, out, 2)
	ada := out[0]
	assert.Equal(t, "Ada Lovelace", ada.CustomerName)
	assert.Equal(t, uint64(2), ada.TotalPurchases)
	assert.True(t, ada.TotalSpent.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, ada.AveragePurchaseValue.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, uint64(2), ada.UniqueCategoriesBought)
	assert.Equal(t, int64(4), ada.TotalItemsBought)
	assert.True(t, ada.TotalSavings.Equal(decimal.RequireFromString("10.00")))
	require.NotNil(t, ada.FirstPurchaseDate)
	require.NotNil(t, ada.LastPurchaseDate)
	assert.Equal(t, *timePtr("2024-01-01 10:30:00"), *ada.FirstPurchaseDate)
	assert.Equal(t, *timePtr("2024-01-05 10:30:00"), *ada.LastPurchaseDate)

	assert.Equal(t, "Grace Hopper", out[1].CustomerName)
	assert.Equal(t, uint64(1), out[1].TotalPurchases)
}

// TestCustomerMetrics_AverageDivisor verifies the average divides by rows
// carrying an amount, not by distinct transactions.
func TestCustomerMetrics_AverageDivisor(t *testing.T) {
	a := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "100.00")
	b := silverRow("tx-2", "Ada Lovelace", "Electronics", "2024-01-02", "50.00")
	b.TotalAmount = nil

	out := CustomerMetrics([]*warehousemodels.SilverSale{a, b}, time.Now().UTC())

	require.Len(t, out, 1)
	assert.Equal(t, uint64(2), out[0].TotalPurchases)
	// One amount-bearing row, so the average equals that amount.
	assert.True(t, out[0].AveragePurchaseValue.Equal(decimal.RequireFromString("100.00")))
}

// TestSafeAverage_ZeroCount verifies the zero-divisor guard.
func TestSafeAverage_ZeroCount(t *testing.T) {
	avg := safeAverage(decimal.RequireFromString("10.00"), 0)
	assert.True(t, avg.IsZero())
}
