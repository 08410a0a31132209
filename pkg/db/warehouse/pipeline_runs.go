package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/xyz-retail/salespipe/pkg/db/clickhouse"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// initPipelineRuns creates the refresh audit log. run_id is the replacing
// key, so a retried RecordRun activity keeps a single entry per run.
func (db *DB) initPipelineRuns(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (run_id)
	`, db.Name, warehousemodels.PipelineRunsTableName,
		warehousemodels.ColumnsToSchemaSQL(warehousemodels.PipelineRunsColumns),
		clickhouse.ReplacingEngine("finished_at"))
	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", warehousemodels.PipelineRunsTableName, err)
	}
	return nil
}

// InsertPipelineRun writes one run record.
func (db *DB) InsertPipelineRun(ctx context.Context, run *warehousemodels.PipelineRun) error {
	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.PipelineRunsTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.PipelineRunsColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	err = batch.Append(
		run.RunID,
		run.StartedAt,
		run.FinishedAt,
		run.Status,
		run.FilesDiscovered,
		run.FilesIngested,
		run.FilesQuarantined,
		run.RowsIngested,
		run.RowsAccepted,
		run.RowsRejected,
		run.FactsWritten,
		run.FactsUnresolved,
		run.Error,
		run.DurationMs,
		run.Detail,
	)
	if err != nil {
		return err
	}

	return batch.Send()
}

// GetPipelineRuns returns recent runs, newest first.
func (db *DB) GetPipelineRuns(ctx context.Context, limit, offset uint64) ([]*warehousemodels.PipelineRun, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.PipelineRunsColumns), ", "),
		db.Name, warehousemodels.PipelineRunsTableName)

	var rows []*warehousemodels.PipelineRun
	if err := db.Select(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("query pipeline runs: %w", err)
	}
	return rows, nil
}

// GetPipelineRun returns one run by id, or nil when unknown.
func (db *DB) GetPipelineRun(ctx context.Context, runID string) (*warehousemodels.PipelineRun, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		WHERE run_id = ?
		LIMIT 1
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.PipelineRunsColumns), ", "),
		db.Name, warehousemodels.PipelineRunsTableName)

	var r warehousemodels.PipelineRun
	err := db.QueryRow(ctx, query, runID).Scan(
		&r.RunID,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Status,
		&r.FilesDiscovered,
		&r.FilesIngested,
		&r.FilesQuarantined,
		&r.RowsIngested,
		&r.RowsAccepted,
		&r.RowsRejected,
		&r.FactsWritten,
		&r.FactsUnresolved,
		&r.Error,
		&r.DurationMs,
		&r.Detail,
	)
	if err != nil {
		if clickhouse.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query pipeline run %s: %w", runID, err)
	}
	return &r, nil
}
