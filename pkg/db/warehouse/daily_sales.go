package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/xyz-retail/salespipe/pkg/db/clickhouse"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// initDailySales creates the per-day, per-category rollup table.
func (db *DB) initDailySales(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (sale_date, category)
	`, db.Name, warehousemodels.DailySalesTableName,
		warehousemodels.ColumnsToSchemaSQL(warehousemodels.DailySalesColumns),
		clickhouse.ReplacingEngine("refreshed_at"))
	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", warehousemodels.DailySalesTableName, err)
	}
	return nil
}

// InsertDailySales persists one refresh of the daily rollup. Existing
// (sale_date, category) rows are superseded via the replacing key.
func (db *DB) InsertDailySales(ctx context.Context, rows []*warehousemodels.DailySales) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.DailySalesTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DailySalesColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, r := range rows {
		err = batch.Append(
			r.SaleDate,
			r.Category,
			r.TotalTransactions,
			r.UniqueCustomers,
			r.TotalItemsSold,
			r.TotalRevenue,
			r.TotalDiscounts,
			r.AveragePrice,
			r.AverageTransactionValue,
			r.RefreshedAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// GetDailySales returns rollup rows, newest date first. Zero times disable
// the corresponding bound.
func (db *DB) GetDailySales(ctx context.Context, from, to time.Time, category string, limit, offset uint64) ([]*warehousemodels.DailySales, error) {
	var conditions []string
	var args []interface{}

	if !from.IsZero() {
		conditions = append(conditions, "sale_date >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		conditions = append(conditions, "sale_date <= ?")
		args = append(args, to)
	}
	if category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, category)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		%s
		ORDER BY sale_date DESC, category
		LIMIT ? OFFSET ?
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DailySalesColumns), ", "),
		db.Name, warehousemodels.DailySalesTableName, where)
	args = append(args, limit, offset)

	var rows []*warehousemodels.DailySales
	if err := db.Select(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}
	return rows, nil
}
