package warehouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
	"github.com/xyz-retail/salespipe/pkg/transform"
)

// Store describes the warehouse operations required by pipeline activities
// and the query API. *DB is the production implementation.
type Store interface {
	DatabaseName() string
	GetConnection() driver.Conn
	Close() error

	// --- Init

	InitializeDB(ctx context.Context) error
	DescribeTable(ctx context.Context, tableName string) ([]Column, error)

	// --- Bronze layer

	InsertBronze(ctx context.Context, rows []*warehousemodels.BronzeSale) error
	GetBronzeSnapshot(ctx context.Context) ([]*warehousemodels.BronzeSale, error)
	CountBronze(ctx context.Context) (uint64, error)

	// --- Silver layer

	InsertSilver(ctx context.Context, rows []*warehousemodels.SilverSale) error
	GetSilverSnapshot(ctx context.Context) ([]*warehousemodels.SilverSale, error)
	CountSilver(ctx context.Context) (uint64, error)
	TruncateSilver(ctx context.Context) error

	// --- Gold rollups

	InsertDailySales(ctx context.Context, rows []*warehousemodels.DailySales) error
	GetDailySales(ctx context.Context, from, to time.Time, category string, limit, offset uint64) ([]*warehousemodels.DailySales, error)
	InsertCustomerMetrics(ctx context.Context, rows []*warehousemodels.CustomerMetrics) error
	GetCustomerMetrics(ctx context.Context, limit, offset uint64) ([]*warehousemodels.CustomerMetrics, error)
	GetCustomerMetricsByName(ctx context.Context, customerName string) (*warehousemodels.CustomerMetrics, error)

	// --- Star schema

	InsertDimensions(ctx context.Context, dims transform.Dimensions) error
	GetKeyAssignments(ctx context.Context) (transform.KeyAssignments, error)
	GetDimLocations(ctx context.Context) ([]*warehousemodels.DimLocation, error)
	GetDimCustomers(ctx context.Context) ([]*warehousemodels.DimCustomer, error)
	GetDimProducts(ctx context.Context) ([]*warehousemodels.DimProduct, error)
	GetDimDates(ctx context.Context) ([]*warehousemodels.DimDate, error)
	InsertFacts(ctx context.Context, rows []*warehousemodels.FactSale) error
	GetFacts(ctx context.Context, unresolvedOnly bool, from, to time.Time, limit, offset uint64) ([]*warehousemodels.FactSale, error)
	CountFacts(ctx context.Context) (uint64, error)

	// --- Ingest ledger

	RecordIngestedFile(ctx context.Context, file *warehousemodels.IngestedFile) error
	GetIngestedFiles(ctx context.Context, limit, offset uint64) ([]*warehousemodels.IngestedFile, error)
	GetLedgerChecksums(ctx context.Context) (map[string]string, error)

	// --- Run log

	InsertPipelineRun(ctx context.Context, run *warehousemodels.PipelineRun) error
	GetPipelineRuns(ctx context.Context, limit, offset uint64) ([]*warehousemodels.PipelineRun, error)
	GetPipelineRun(ctx context.Context, runID string) (*warehousemodels.PipelineRun, error)
}

var _ Store = (*DB)(nil)
