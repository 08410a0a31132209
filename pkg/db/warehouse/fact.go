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

// initFactSales creates the fact table. Facts are re-derived from silver on
// every refresh; (source_file, source_seq) keys each transaction back to its
// source row, so re-derivation supersedes rather than duplicates.
func (db *DB) initFactSales(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (transaction_id, source_file, source_seq)
	`, db.Name, warehousemodels.FactSalesTableName,
		warehousemodels.ColumnsToSchemaSQL(warehousemodels.FactSalesColumns),
		clickhouse.ReplacingEngine("refreshed_at"))
	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", warehousemodels.FactSalesTableName, err)
	}
	return nil
}

// InsertFacts persists one refresh of the fact table.
func (db *DB) InsertFacts(ctx context.Context, rows []*warehousemodels.FactSale) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.FactSalesTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.FactSalesColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, r := range rows {
		err = batch.Append(
			r.TransactionID,
			r.CustomerKey,
			r.ProductKey,
			r.LocationKey,
			r.DateKey,
			r.Quantity,
			r.Price,
			r.Discount,
			r.TotalAmount,
			r.PaymentMethod,
			r.UnresolvedDims,
			r.SourceFile,
			r.SourceSeq,
			r.RefreshedAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// GetFacts returns fact rows in stable source order. Zero times disable the
// corresponding date bound. When unresolvedOnly is set, only rows flagged
// with at least one unresolved dimension are returned; those exist only
// under the "flag" join policy.
func (db *DB) GetFacts(ctx context.Context, unresolvedOnly bool, from, to time.Time, limit, offset uint64) ([]*warehousemodels.FactSale, error) {
	var conditions []string
	var args []interface{}

	if unresolvedOnly {
		conditions = append(conditions, "notEmpty(unresolved_dims)")
	}
	if !from.IsZero() {
		conditions = append(conditions, "date_key >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		conditions = append(conditions, "date_key <= ?")
		args = append(args, to)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		%s
		ORDER BY source_file, source_seq
		LIMIT ? OFFSET ?
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.FactSalesColumns), ", "),
		db.Name, warehousemodels.FactSalesTableName, where)
	args = append(args, limit, offset)

	var rows []*warehousemodels.FactSale
	if err := db.Select(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	return rows, nil
}

// CountFacts returns the deduped fact row count.
func (db *DB) CountFacts(ctx context.Context) (uint64, error) {
	query := fmt.Sprintf(`SELECT count() FROM "%s"."%s" FINAL`,
		db.Name, warehousemodels.FactSalesTableName)

	var count uint64
	if err := db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count facts: %w", err)
	}
	return count, nil
}
