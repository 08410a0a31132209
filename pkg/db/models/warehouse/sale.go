package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

const BronzeTableName = "sales_bronze"
const SilverTableName = "sales_silver"

// saleColumns are the fourteen-plus business columns shared by the bronze and
// silver tables. Bronze keeps every business column nullable because source
// files are ingested untransformed; silver narrows transaction_id and
// product_id to non-nullable after cleansing.
func saleColumns(mandatoryIDs bool) []ColumnDef {
	idType := "Nullable(String)"
	if mandatoryIDs {
		idType = "String"
	}
	return []ColumnDef{
		{Name: "transaction_id", Type: idType, Codec: "ZSTD(1)"},
		{Name: "product_id", Type: idType, Codec: "ZSTD(1)"},
		{Name: "product_name", Type: "Nullable(String)", Codec: "ZSTD(1)"},
		{Name: "customer_name", Type: "Nullable(String)", Codec: "ZSTD(1)"},
		{Name: "email", Type: "Nullable(String)", Codec: "ZSTD(1)"},
		{Name: "delivery_address", Type: "Nullable(String)", Codec: "ZSTD(1)"},
		{Name: "city", Type: "LowCardinality(Nullable(String))"},
		{Name: "state", Type: "LowCardinality(Nullable(String))"},
		{Name: "zip_code", Type: "Nullable(String)", Codec: "ZSTD(1)"},
		{Name: "category", Type: "LowCardinality(Nullable(String))"},
		{Name: "quantity", Type: "Nullable(Int32)", Codec: "Delta, ZSTD(3)"},
		{Name: "price", Type: "Nullable(Decimal(18, 2))"},
		{Name: "discount", Type: "Nullable(Decimal(18, 2))"},
		{Name: "total_amount", Type: "Nullable(Decimal(18, 2))"},
		{Name: "payment_method", Type: "LowCardinality(Nullable(String))"},
		{Name: "transaction_date", Type: "Nullable(DateTime)"},
	}
}

// ingestMetaColumns tag every row with its source lineage. The
// (source_file, source_seq) pair is the replacing key for both bronze and
// silver, which makes re-ingesting a file a storage-level no-op.
var ingestMetaColumns = []ColumnDef{
	{Name: "source_file", Type: "String", Codec: "ZSTD(1)"},
	{Name: "source_seq", Type: "UInt32", Codec: "Delta, ZSTD(3)"},
	{Name: "ingested_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// BronzeColumns defines the schema for the sales_bronze table.
var BronzeColumns = append(saleColumns(false), ingestMetaColumns...)

// SilverColumns defines the schema for the sales_silver table.
var SilverColumns = append(saleColumns(true), ingestMetaColumns...)

// BronzeSale is one raw source row plus ingestion metadata. Rows are
// append-only and never mutated; every business field is optional because the
// source files arrive untrusted.
type BronzeSale struct {
	TransactionID   *string          `ch:"transaction_id" json:"transaction_id"`
	ProductID       *string          `ch:"product_id" json:"product_id"`
	ProductName     *string          `ch:"product_name" json:"product_name"`
	CustomerName    *string          `ch:"customer_name" json:"customer_name"`
	Email           *string          `ch:"email" json:"email"`
	DeliveryAddress *string          `ch:"delivery_address" json:"delivery_address"`
	City            *string          `ch:"city" json:"city"`
	State           *string          `ch:"state" json:"state"`
	ZipCode         *string          `ch:"zip_code" json:"zip_code"`
	Category        *string          `ch:"category" json:"category"`
	Quantity        *int32           `ch:"quantity" json:"quantity"`
	Price           *decimal.Decimal `ch:"price" json:"price"`
	Discount        *decimal.Decimal `ch:"discount" json:"discount"`
	TotalAmount     *decimal.Decimal `ch:"total_amount" json:"total_amount"`
	PaymentMethod   *string          `ch:"payment_method" json:"payment_method"`
	TransactionDate *time.Time       `ch:"transaction_date" json:"transaction_date"`

	SourceFile string    `ch:"source_file" json:"source_file"`
	SourceSeq  uint32    `ch:"source_seq" json:"source_seq"`
	IngestedAt time.Time `ch:"ingested_at" json:"ingested_at"`
}

// SilverSale is a cleansed sales row: transaction_id and product_id are
// guaranteed non-null, everything else passes through from bronze unchanged.
type SilverSale struct {
	TransactionID   string           `ch:"transaction_id" json:"transaction_id"`
	ProductID       string           `ch:"product_id" json:"product_id"`
	ProductName     *string          `ch:"product_name" json:"product_name"`
	CustomerName    *string          `ch:"customer_name" json:"customer_name"`
	Email           *string          `ch:"email" json:"email"`
	DeliveryAddress *string          `ch:"delivery_address" json:"delivery_address"`
	City            *string          `ch:"city" json:"city"`
	State           *string          `ch:"state" json:"state"`
	ZipCode         *string          `ch:"zip_code" json:"zip_code"`
	Category        *string          `ch:"category" json:"category"`
	Quantity        *int32           `ch:"quantity" json:"quantity"`
	Price           *decimal.Decimal `ch:"price" json:"price"`
	Discount        *decimal.Decimal `ch:"discount" json:"discount"`
	TotalAmount     *decimal.Decimal `ch:"total_amount" json:"total_amount"`
	PaymentMethod   *string          `ch:"payment_method" json:"payment_method"`
	TransactionDate *time.Time       `ch:"transaction_date" json:"transaction_date"`

	SourceFile string    `ch:"source_file" json:"source_file"`
	SourceSeq  uint32    `ch:"source_seq" json:"source_seq"`
	IngestedAt time.Time `ch:"ingested_at" json:"ingested_at"`
}
