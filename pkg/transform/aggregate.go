package transform

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// The gold rollups are pure functions of the silver snapshot: both are
// re-derived from scratch on every refresh, so their output must be fully
// deterministic (stable grouping and ordering) for the replacing keys to
// converge across runs.

type dailyKey struct {
	date     time.Time
	category string
}

type dailyAcc struct {
	transactions map[string]struct{}
	customers    map[string]struct{}
	items        int64
	revenue      decimal.Decimal
	discounts    decimal.Decimal
	priceSum     decimal.Decimal
	priceCount   int64
}

// DailySales groups silver rows by (date(transaction_date), category) and
// computes the daily sales rollup. Rows with a null transaction_date fall
// into the zero-date group; rows with a null category into the empty-category
// group, mirroring SQL GROUP BY which treats NULLs as one group. Averages
// skip null inputs the way SQL aggregates do.
func DailySales(rows []*warehousemodels.SilverSale, refreshedAt time.Time) []*warehousemodels.DailySales {
	groups := make(map[dailyKey]*dailyAcc)

	for _, row := range rows {
		key := dailyKey{date: dateOf(row.TransactionDate), category: strOrEmpty(row.Category)}
		acc, ok := groups[key]
		if !ok {
			acc = &dailyAcc{
				transactions: make(map[string]struct{}),
				customers:    make(map[string]struct{}),
			}
			groups[key] = acc
		}

		acc.transactions[row.TransactionID] = struct{}{}
		if row.CustomerName != nil {
			acc.customers[*row.CustomerName] = struct{}{}
		}
		if row.Quantity != nil {
			acc.items += int64(*row.Quantity)
		}
		if row.TotalAmount != nil {
			acc.revenue = acc.revenue.Add(*row.TotalAmount)
		}
		if row.Discount != nil {
			acc.discounts = acc.discounts.Add(*row.Discount)
		}
		if row.Price != nil {
			acc.priceSum = acc.priceSum.Add(*row.Price)
			acc.priceCount++
		}
	}

	out := make([]*warehousemodels.DailySales, 0, len(groups))
	for key, acc := range groups {
		out = append(out, &warehousemodels.DailySales{
			SaleDate:                key.date,
			Category:                key.category,
			TotalTransactions:       uint64(len(acc.transactions)),
			UniqueCustomers:         uint64(len(acc.customers)),
			TotalItemsSold:          acc.items,
			TotalRevenue:            acc.revenue.Round(2),
			TotalDiscounts:          acc.discounts.Round(2),
			AveragePrice:            safeAverage(acc.priceSum, acc.priceCount),
			AverageTransactionValue: safeAverage(acc.revenue, int64(len(acc.transactions))),
			RefreshedAt:             refreshedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.Before(out[j].SaleDate)
		}
		return out[i].Category < out[j].Category
	})

	return out
}

type customerAcc struct {
	transactions map[string]struct{}
	categories   map[string]struct{}
	spent        decimal.Decimal
	amountCount  int64
	items        int64
	savings      decimal.Decimal
	first        *time.Time
	last         *time.Time
}

// CustomerMetrics groups silver rows by customer_name and computes the
// purchase-pattern rollup. A null customer_name groups under the empty name.
// average_purchase_value follows the SQL AVG(total_amount) semantics: the
// divisor is the number of rows carrying a non-null total_amount, not the
// distinct-transaction count.
func CustomerMetrics(rows []*warehousemodels.SilverSale, refreshedAt time.Time) []*warehousemodels.CustomerMetrics {
	groups := make(map[string]*customerAcc)

	for _, row := range rows {
		name := strOrEmpty(row.CustomerName)
		acc, ok := groups[name]
		if !ok {
			acc = &customerAcc{
				transactions: make(map[string]struct{}),
				categories:   make(map[string]struct{}),
			}
			groups[name] = acc
		}

		acc.transactions[row.TransactionID] = struct{}{}
		if row.Category != nil {
			acc.categories[*row.Category] = struct{}{}
		}
		if row.TotalAmount != nil {
			acc.spent = acc.spent.Add(*row.TotalAmount)
			acc.amountCount++
		}
		if row.Quantity != nil {
			acc.items += int64(*row.Quantity)
		}
		if row.Discount != nil {
			acc.savings = acc.savings.Add(*row.Discount)
		}
		if row.TransactionDate != nil {
			ts := *row.TransactionDate
			if acc.first == nil || ts.Before(*acc.first) {
				acc.first = &ts
			}
			if acc.last == nil || ts.After(*acc.last) {
				acc.last = &ts
			}
		}
	}

	out := make([]*warehousemodels.CustomerMetrics, 0, len(groups))
	for name, acc := range groups {
		out = append(out, &warehousemodels.CustomerMetrics{
			CustomerName:           name,
			TotalPurchases:         uint64(len(acc.transactions)),
			TotalSpent:             acc.spent.Round(2),
			AveragePurchaseValue:   safeAverage(acc.spent, acc.amountCount),
			UniqueCategoriesBought: uint64(len(acc.categories)),
			LastPurchaseDate:       acc.last,
			FirstPurchaseDate:      acc.first,
			TotalItemsBought:       acc.items,
			TotalSavings:           acc.savings.Round(2),
			RefreshedAt:            refreshedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CustomerName < out[j].CustomerName })

	return out
}

// safeAverage divides sum by count, guarding the zero-count case: an empty
// divisor yields a zero average rather than a panic or an undefined value.
func safeAverage(sum decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count)).Round(2)
}

// dateOf truncates a nullable timestamp to its calendar date in UTC.
// A null timestamp maps to the zero date.
func dateOf(ts *time.Time) time.Time {
	if ts == nil {
		return time.Time{}
	}
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
