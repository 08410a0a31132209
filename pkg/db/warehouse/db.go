package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/pkg/db/clickhouse"
	"github.com/xyz-retail/salespipe/pkg/utils"
)

// DB is the sales warehouse database. It owns every layer of the pipeline:
// the bronze and silver sale tables, the two gold rollups, the star schema,
// and the ingest ledger and run log. It implements Store.
type DB struct {
	clickhouse.Client
	Name string
}

// New connects to ClickHouse and initializes the warehouse database and its
// tables. The database name comes from WAREHOUSE_DB.
func New(ctx context.Context, logger *zap.Logger) (*DB, error) {
	dbName := clickhouse.SanitizeName(utils.Env("CLICKHOUSE_DB", "sales_warehouse"))

	client, err := clickhouse.New(ctx, logger.With(zap.String("db", dbName)), dbName)
	if err != nil {
		return nil, err
	}

	db := &DB{
		Client: client,
		Name:   dbName,
	}

	if err := db.InitializeDB(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// NewWithClient wraps an existing ClickHouse connection. The database and
// tables must already exist; this constructor does not call InitializeDB.
func NewWithClient(client clickhouse.Client, dbName string) *DB {
	return &DB{
		Client: client,
		Name:   clickhouse.SanitizeName(dbName),
	}
}

// DatabaseName returns the ClickHouse database the warehouse lives in.
func (db *DB) DatabaseName() string {
	return db.Name
}

// GetConnection exposes the underlying driver connection.
func (db *DB) GetConnection() driver.Conn {
	return db.Db
}

// Close terminates the underlying ClickHouse connection.
func (db *DB) Close() error {
	return db.Db.Close()
}

// InitializeDB ensures the warehouse database and every pipeline table exist.
func (db *DB) InitializeDB(ctx context.Context) error {
	initStart := time.Now()

	if err := db.CreateDbIfNotExists(ctx, db.Name); err != nil {
		return fmt.Errorf("create database %s: %w", db.Name, err)
	}

	initOps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"sales_bronze", db.initBronze},
		{"sales_silver", db.initSilver},
		{"daily_sales_gold", db.initDailySales},
		{"customer_metrics_gold", db.initCustomerMetrics},
		{"dimensions", db.initDimensions},
		{"fact_sales", db.initFactSales},
		{"ingest_ledger", db.initIngestLedger},
		{"pipeline_runs", db.initPipelineRuns},
	}

	for _, op := range initOps {
		if err := op.fn(ctx); err != nil {
			return fmt.Errorf("init %s: %w", op.name, err)
		}
	}

	db.Logger.Info("Warehouse initialized",
		zap.String("database", db.Name),
		zap.Duration("took", time.Since(initStart)))

	return nil
}
