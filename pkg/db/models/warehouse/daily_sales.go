package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

const DailySalesTableName = "daily_sales_gold"

// DailySalesColumns defines the schema for the daily_sales_gold table.
// The (sale_date, category) pair is the replacing key; refreshed_at versions
// rows so a re-derived rollup supersedes the previous one.
var DailySalesColumns = []ColumnDef{
	{Name: "sale_date", Type: "Date"},
	{Name: "category", Type: "LowCardinality(String)"},
	{Name: "total_transactions", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "unique_customers", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "total_items_sold", Type: "Int64", Codec: "Delta, ZSTD(3)"},
	{Name: "total_revenue", Type: "Decimal(18, 2)"},
	{Name: "total_discounts", Type: "Decimal(18, 2)"},
	{Name: "average_price", Type: "Decimal(18, 2)"},
	{Name: "average_transaction_value", Type: "Decimal(18, 2)"},
	{Name: "refreshed_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// DailySales is one (sale_date, category) rollup over the silver layer.
// Rows with a null transaction_date in silver aggregate under the zero date.
type DailySales struct {
	SaleDate                time.Time       `ch:"sale_date" json:"sale_date"`
	Category                string          `ch:"category" json:"category"`
	TotalTransactions       uint64          `ch:"total_transactions" json:"total_transactions"`
	UniqueCustomers         uint64          `ch:"unique_customers" json:"unique_customers"`
	TotalItemsSold          int64           `ch:"total_items_sold" json:"total_items_sold"`
	TotalRevenue            decimal.Decimal `ch:"total_revenue" json:"total_revenue"`
	TotalDiscounts          decimal.Decimal `ch:"total_discounts" json:"total_discounts"`
	AveragePrice            decimal.Decimal `ch:"average_price" json:"average_price"`
	AverageTransactionValue decimal.Decimal `ch:"average_transaction_value" json:"average_transaction_value"`
	RefreshedAt             time.Time       `ch:"refreshed_at" json:"refreshed_at"`
}
