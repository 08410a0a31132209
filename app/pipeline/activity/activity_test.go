package activity

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/mock"

	"github.com/xyz-retail/salespipe/pkg/db/warehouse"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
	"github.com/xyz-retail/salespipe/pkg/transform"
)

// MockStore is a mock implementation of warehouse.Store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) DatabaseName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStore) GetConnection() driver.Conn {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(driver.Conn)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStore) InitializeDB(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) DescribeTable(ctx context.Context, tableName string) ([]warehouse.Column, error) {
	args := m.Called(ctx, tableName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]warehouse.Column), args.Error(1)
}

func (m *MockStore) InsertBronze(ctx context.Context, rows []*warehousemodels.BronzeSale) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStore) GetBronzeSnapshot(ctx context.Context) ([]*warehousemodels.BronzeSale, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.BronzeSale), args.Error(1)
}

func (m *MockStore) CountBronze(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockStore) InsertSilver(ctx context.Context, rows []*warehousemodels.SilverSale) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStore) GetSilverSnapshot(ctx context.Context) ([]*warehousemodels.SilverSale, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.SilverSale), args.Error(1)
}

func (m *MockStore) CountSilver(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockStore) TruncateSilver(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) InsertDailySales(ctx context.Context, rows []*warehousemodels.DailySales) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStore) GetDailySales(ctx context.Context, from, to time.Time, category string, limit, offset uint64) ([]*warehousemodels.DailySales, error) {
	args := m.Called(ctx, from, to, category, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.DailySales), args.Error(1)
}

func (m *MockStore) InsertCustomerMetrics(ctx context.Context, rows []*warehousemodels.CustomerMetrics) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStore) GetCustomerMetrics(ctx context.Context, limit, offset uint64) ([]*warehousemodels.CustomerMetrics, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.CustomerMetrics), args.Error(1)
}

func (m *MockStore) GetCustomerMetricsByName(ctx context.Context, customerName string) (*warehousemodels.CustomerMetrics, error) {
	args := m.Called(ctx, customerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*warehousemodels.CustomerMetrics), args.Error(1)
}

func (m *MockStore) InsertDimensions(ctx context.Context, dims transform.Dimensions) error {
	args := m.Called(ctx, dims)
	return args.Error(0)
}

func (m *MockStore) GetKeyAssignments(ctx context.Context) (transform.KeyAssignments, error) {
	args := m.Called(ctx)
	return args.Get(0).(transform.KeyAssignments), args.Error(1)
}

func (m *MockStore) GetDimLocations(ctx context.Context) ([]*warehousemodels.DimLocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.DimLocation), args.Error(1)
}

func (m *MockStore) GetDimCustomers(ctx context.Context) ([]*warehousemodels.DimCustomer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.DimCustomer), args.Error(1)
}

func (m *MockStore) GetDimProducts(ctx context.Context) ([]*warehousemodels.DimProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.DimProduct), args.Error(1)
}

func (m *MockStore) GetDimDates(ctx context.Context) ([]*warehousemodels.DimDate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.DimDate), args.Error(1)
}

func (m *MockStore) InsertFacts(ctx context.Context, rows []*warehousemodels.FactSale) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStore) GetFacts(ctx context.Context, unresolvedOnly bool, from, to time.Time, limit, offset uint64) ([]*warehousemodels.FactSale, error) {
	args := m.Called(ctx, unresolvedOnly, from, to, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.FactSale), args.Error(1)
}

func (m *MockStore) CountFacts(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockStore) RecordIngestedFile(ctx context.Context, file *warehousemodels.IngestedFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockStore) GetIngestedFiles(ctx context.Context, limit, offset uint64) ([]*warehousemodels.IngestedFile, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.IngestedFile), args.Error(1)
}

func (m *MockStore) GetLedgerChecksums(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockStore) InsertPipelineRun(ctx context.Context, run *warehousemodels.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockStore) GetPipelineRuns(ctx context.Context, limit, offset uint64) ([]*warehousemodels.PipelineRun, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*warehousemodels.PipelineRun), args.Error(1)
}

func (m *MockStore) GetPipelineRun(ctx context.Context, runID string) (*warehousemodels.PipelineRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*warehousemodels.PipelineRun), args.Error(1)
}

var _ warehouse.Store = (*MockStore)(nil)
