package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/xyz-retail/salespipe/pkg/db/clickhouse"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// initIngestLedger creates the ledger of processed source files. One row per
// file name; re-recording a file (after a retried activity) replaces the
// previous entry.
func (db *DB) initIngestLedger(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (source_file)
	`, db.Name, warehousemodels.IngestLedgerTableName,
		warehousemodels.ColumnsToSchemaSQL(warehousemodels.IngestLedgerColumns),
		clickhouse.ReplacingEngine("ingested_at"))
	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", warehousemodels.IngestLedgerTableName, err)
	}
	return nil
}

// RecordIngestedFile writes one ledger entry.
func (db *DB) RecordIngestedFile(ctx context.Context, file *warehousemodels.IngestedFile) error {
	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.IngestLedgerTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.IngestLedgerColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	err = batch.Append(
		file.SourceFile,
		file.Checksum,
		file.SizeBytes,
		file.Status,
		file.RowsRead,
		file.RowsLoaded,
		file.RowsMalformed,
		file.Error,
		file.IngestedAt,
	)
	if err != nil {
		return err
	}

	return batch.Send()
}

// GetIngestedFiles returns the full ledger, newest first.
func (db *DB) GetIngestedFiles(ctx context.Context, limit, offset uint64) ([]*warehousemodels.IngestedFile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		ORDER BY ingested_at DESC, source_file
		LIMIT ? OFFSET ?
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.IngestLedgerColumns), ", "),
		db.Name, warehousemodels.IngestLedgerTableName)

	var rows []*warehousemodels.IngestedFile
	if err := db.Select(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("query ingest ledger: %w", err)
	}
	return rows, nil
}

// GetLedgerChecksums returns the checksum of every file the pipeline has
// already processed, keyed by file name. Discovery diffs candidate files
// against this map: a name with a matching checksum is skipped, a name with a
// different checksum is a changed file and gets re-ingested.
func (db *DB) GetLedgerChecksums(ctx context.Context) (map[string]string, error) {
	query := fmt.Sprintf(`
		SELECT source_file, checksum
		FROM "%s"."%s" FINAL
	`, db.Name, warehousemodels.IngestLedgerTableName)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ledger checksums: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	checksums := make(map[string]string)
	for rows.Next() {
		var name, checksum string
		if err := rows.Scan(&name, &checksum); err != nil {
			return nil, fmt.Errorf("scan ledger checksum: %w", err)
		}
		checksums[name] = checksum
	}
	return checksums, rows.Err()
}
