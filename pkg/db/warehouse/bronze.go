package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/xyz-retail/salespipe/pkg/db/clickhouse"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// initBronze creates the raw landing table. (source_file, source_seq) is the
// replacing key, so replaying a file overwrites its own rows instead of
// duplicating them.
func (db *DB) initBronze(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (source_file, source_seq)
	`, db.Name, warehousemodels.BronzeTableName,
		warehousemodels.ColumnsToSchemaSQL(warehousemodels.BronzeColumns),
		clickhouse.ReplacingEngine("ingested_at"))
	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", warehousemodels.BronzeTableName, err)
	}
	return nil
}

// InsertBronze persists one decoded file's rows into the bronze layer.
func (db *DB) InsertBronze(ctx context.Context, rows []*warehousemodels.BronzeSale) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.BronzeTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.BronzeColumns), ", "))
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
			r.ProductID,
			r.ProductName,
			r.CustomerName,
			r.Email,
			r.DeliveryAddress,
			r.City,
			r.State,
			r.ZipCode,
			r.Category,
			r.Quantity,
			r.Price,
			r.Discount,
			r.TotalAmount,
			r.PaymentMethod,
			r.TransactionDate,
			r.SourceFile,
			r.SourceSeq,
			r.IngestedAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// GetBronzeSnapshot returns the deduped bronze layer in stable
// (source_file, source_seq) order. Silver is recomputed from this snapshot on
// every refresh.
func (db *DB) GetBronzeSnapshot(ctx context.Context) ([]*warehousemodels.BronzeSale, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		ORDER BY source_file, source_seq
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.BronzeColumns), ", "),
		db.Name, warehousemodels.BronzeTableName)

	var rows []*warehousemodels.BronzeSale
	if err := db.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query bronze snapshot: %w", err)
	}
	return rows, nil
}

// CountBronze returns the deduped bronze row count.
func (db *DB) CountBronze(ctx context.Context) (uint64, error) {
	query := fmt.Sprintf(`SELECT count() FROM "%s"."%s" FINAL`,
		db.Name, warehousemodels.BronzeTableName)

	var count uint64
	if err := db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bronze rows: %w", err)
	}
	return count, nil
}
