package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/xyz-retail/salespipe/pkg/db/clickhouse"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// initCustomerMetrics creates the per-customer rollup table.
func (db *DB) initCustomerMetrics(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (customer_name)
	`, db.Name, warehousemodels.CustomerMetricsTableName,
		warehousemodels.ColumnsToSchemaSQL(warehousemodels.CustomerMetricsColumns),
		clickhouse.ReplacingEngine("refreshed_at"))
	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", warehousemodels.CustomerMetricsTableName, err)
	}
	return nil
}

// InsertCustomerMetrics persists one refresh of the customer rollup.
func (db *DB) InsertCustomerMetrics(ctx context.Context, rows []*warehousemodels.CustomerMetrics) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.CustomerMetricsTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.CustomerMetricsColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, r := range rows {
		err = batch.Append(
			r.CustomerName,
			r.TotalPurchases,
			r.TotalSpent,
			r.AveragePurchaseValue,
			r.UniqueCategoriesBought,
			r.LastPurchaseDate,
			r.FirstPurchaseDate,
			r.TotalItemsBought,
			r.TotalSavings,
			r.RefreshedAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// GetCustomerMetrics returns the rollup ordered by total spend, biggest
// spenders first.
func (db *DB) GetCustomerMetrics(ctx context.Context, limit, offset uint64) ([]*warehousemodels.CustomerMetrics, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		ORDER BY total_spent DESC, customer_name
		LIMIT ? OFFSET ?
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.CustomerMetricsColumns), ", "),
		db.Name, warehousemodels.CustomerMetricsTableName)

	var rows []*warehousemodels.CustomerMetrics
	if err := db.Select(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("query customer metrics: %w", err)
	}
	return rows, nil
}

// GetCustomerMetricsByName returns one customer's rollup row, or nil when the
// customer is unknown.
func (db *DB) GetCustomerMetricsByName(ctx context.Context, customerName string) (*warehousemodels.CustomerMetrics, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		WHERE customer_name = ?
		LIMIT 1
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.CustomerMetricsColumns), ", "),
		db.Name, warehousemodels.CustomerMetricsTableName)

	var m warehousemodels.CustomerMetrics
	err := db.QueryRow(ctx, query, customerName).Scan(
		&m.CustomerName,
		&m.TotalPurchases,
		&m.TotalSpent,
		&m.AveragePurchaseValue,
		&m.UniqueCategoriesBought,
		&m.LastPurchaseDate,
		&m.FirstPurchaseDate,
		&m.TotalItemsBought,
		&m.TotalSavings,
		&m.RefreshedAt,
	)
	if err != nil {
		if clickhouse.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query customer metrics for %s: %w", customerName, err)
	}
	return &m, nil
}
