package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

const CustomerMetricsTableName = "customer_metrics_gold"

// CustomerMetricsColumns defines the schema for the customer_metrics_gold table.
var CustomerMetricsColumns = []ColumnDef{
	{Name: "customer_name", Type: "String", Codec: "ZSTD(1)"},
	{Name: "total_purchases", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "total_spent", Type: "Decimal(18, 2)"},
	{Name: "average_purchase_value", Type: "Decimal(18, 2)"},
	{Name: "unique_categories_bought", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "last_purchase_date", Type: "Nullable(DateTime)"},
	{Name: "first_purchase_date", Type: "Nullable(DateTime)"},
	{Name: "total_items_bought", Type: "Int64", Codec: "Delta, ZSTD(3)"},
	{Name: "total_savings", Type: "Decimal(18, 2)"},
	{Name: "refreshed_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// CustomerMetrics is the per-customer purchase-pattern rollup over the silver
// layer. Purchase dates are nullable because silver rows may carry no
// transaction_date; min/max skip those rows like their SQL counterparts.
type CustomerMetrics struct {
	CustomerName           string          `ch:"customer_name" json:"customer_name"`
	TotalPurchases         uint64          `ch:"total_purchases" json:"total_purchases"`
	TotalSpent             decimal.Decimal `ch:"total_spent" json:"total_spent"`
	AveragePurchaseValue   decimal.Decimal `ch:"average_purchase_value" json:"average_purchase_value"`
	UniqueCategoriesBought uint64          `ch:"unique_categories_bought" json:"unique_categories_bought"`
	LastPurchaseDate       *time.Time      `ch:"last_purchase_date" json:"last_purchase_date"`
	FirstPurchaseDate      *time.Time      `ch:"first_purchase_date" json:"first_purchase_date"`
	TotalItemsBought       int64           `ch:"total_items_bought" json:"total_items_bought"`
	TotalSavings           decimal.Decimal `ch:"total_savings" json:"total_savings"`
	RefreshedAt            time.Time       `ch:"refreshed_at" json:"refreshed_at"`
}
