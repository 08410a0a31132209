package warehouse

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DimLocationTableName = "dim_location"
const DimCustomerTableName = "dim_customer"
const DimProductTableName = "dim_product"
const DimDateTableName = "dim_date"

// Dimension tables are keyed by their natural-attribute tuple (the ORDER BY),
// so re-emitting an existing tuple with its already-assigned surrogate key
// collapses to a single row. Surrogate keys must therefore stay stable across
// refreshes; the transform layer reuses keys loaded from these tables.

// DimLocationColumns defines the schema for the dim_location table.
var DimLocationColumns = []ColumnDef{
	{Name: "location_key", Type: "UUID"},
	{Name: "delivery_address", Type: "String", Codec: "ZSTD(1)"},
	{Name: "city", Type: "LowCardinality(String)"},
	{Name: "state", Type: "LowCardinality(String)"},
	{Name: "zip_code", Type: "String", Codec: "ZSTD(1)"},
}

// DimCustomerColumns defines the schema for the dim_customer table.
var DimCustomerColumns = []ColumnDef{
	{Name: "customer_key", Type: "UUID"},
	{Name: "location_key", Type: "UUID"},
	{Name: "customer_name", Type: "String", Codec: "ZSTD(1)"},
	{Name: "email", Type: "String", Codec: "ZSTD(1)"},
}

// DimProductColumns defines the schema for the dim_product table.
var DimProductColumns = []ColumnDef{
	{Name: "product_key", Type: "UUID"},
	{Name: "product_id", Type: "String", Codec: "ZSTD(1)"},
	{Name: "product_name", Type: "String", Codec: "ZSTD(1)"},
	{Name: "category", Type: "LowCardinality(String)"},
	{Name: "price", Type: "Decimal(18, 2)"},
}

// DimDateColumns defines the schema for the dim_date table.
// The calendar date itself is the surrogate key.
var DimDateColumns = []ColumnDef{
	{Name: "date_key", Type: "Date"},
	{Name: "year", Type: "UInt16"},
	{Name: "month", Type: "UInt8"},
	{Name: "day", Type: "UInt8"},
}

type DimLocation struct {
	LocationKey     uuid.UUID `ch:"location_key" json:"location_key"`
	DeliveryAddress string    `ch:"delivery_address" json:"delivery_address"`
	City            string    `ch:"city" json:"city"`
	State           string    `ch:"state" json:"state"`
	ZipCode         string    `ch:"zip_code" json:"zip_code"`
}

type DimCustomer struct {
	CustomerKey  uuid.UUID `ch:"customer_key" json:"customer_key"`
	LocationKey  uuid.UUID `ch:"location_key" json:"location_key"`
	CustomerName string    `ch:"customer_name" json:"customer_name"`
	Email        string    `ch:"email" json:"email"`
}

type DimProduct struct {
	ProductKey  uuid.UUID       `ch:"product_key" json:"product_key"`
	ProductID   string          `ch:"product_id" json:"product_id"`
	ProductName string          `ch:"product_name" json:"product_name"`
	Category    string          `ch:"category" json:"category"`
	Price       decimal.Decimal `ch:"price" json:"price"`
}

type DimDate struct {
	DateKey time.Time `ch:"date_key" json:"date_key"`
	Year    uint16    `ch:"year" json:"year"`
	Month   uint8     `ch:"month" json:"month"`
	Day     uint8     `ch:"day" json:"day"`
}
