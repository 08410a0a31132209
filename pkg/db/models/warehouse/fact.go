package warehouse

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const FactSalesTableName = "fact_sales"

// FactSalesColumns defines the schema for the fact_sales table.
// Dimension keys are nullable to support the "flag" join policy, where rows
// that fail to resolve a dimension are kept with the failures listed in
// unresolved_dims. Under the default "drop" policy every key is populated.
var FactSalesColumns = []ColumnDef{
	{Name: "transaction_id", Type: "String", Codec: "ZSTD(1)"},
	{Name: "customer_key", Type: "Nullable(UUID)"},
	{Name: "product_key", Type: "Nullable(UUID)"},
	{Name: "location_key", Type: "Nullable(UUID)"},
	{Name: "date_key", Type: "Nullable(Date)"},
	{Name: "quantity", Type: "Nullable(Int32)", Codec: "Delta, ZSTD(3)"},
	{Name: "price", Type: "Nullable(Decimal(18, 2))"},
	{Name: "discount", Type: "Nullable(Decimal(18, 2))"},
	{Name: "total_amount", Type: "Nullable(Decimal(18, 2))"},
	{Name: "payment_method", Type: "LowCardinality(Nullable(String))"},
	{Name: "unresolved_dims", Type: "Array(LowCardinality(String))"},
	{Name: "source_file", Type: "String", Codec: "ZSTD(1)"},
	{Name: "source_seq", Type: "UInt32", Codec: "Delta, ZSTD(3)"},
	{Name: "refreshed_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// FactSale is one resolved transaction in the star schema.
type FactSale struct {
	TransactionID  string           `ch:"transaction_id" json:"transaction_id"`
	CustomerKey    *uuid.UUID       `ch:"customer_key" json:"customer_key"`
	ProductKey     *uuid.UUID       `ch:"product_key" json:"product_key"`
	LocationKey    *uuid.UUID       `ch:"location_key" json:"location_key"`
	DateKey        *time.Time       `ch:"date_key" json:"date_key"`
	Quantity       *int32           `ch:"quantity" json:"quantity"`
	Price          *decimal.Decimal `ch:"price" json:"price"`
	Discount       *decimal.Decimal `ch:"discount" json:"discount"`
	TotalAmount    *decimal.Decimal `ch:"total_amount" json:"total_amount"`
	PaymentMethod  *string          `ch:"payment_method" json:"payment_method"`
	UnresolvedDims []string         `ch:"unresolved_dims" json:"unresolved_dims"`
	SourceFile     string           `ch:"source_file" json:"source_file"`
	SourceSeq      uint32           `ch:"source_seq" json:"source_seq"`
	RefreshedAt    time.Time        `ch:"refreshed_at" json:"refreshed_at"`
}

// Resolved reports whether every dimension key on the fact row is populated.
func (f *FactSale) Resolved() bool {
	return len(f.UnresolvedDims) == 0
}
