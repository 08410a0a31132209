package workflow

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/xyz-retail/salespipe/app/pipeline/types"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// RefreshWorkflow runs one end-to-end refresh of the warehouse:
// discover -> ingest -> silver -> (daily sales || customer metrics) ->
// dimensions -> facts -> record. The two gold rollups run in parallel since
// they read the same silver snapshot and write disjoint tables; dimensions
// must complete before facts because fact resolution reads the persisted
// dimension keys.
//
// Every step is idempotent at the storage layer, so the workflow uses plain
// retries and records a failed run when a step gives out.
func (wc *Context) RefreshWorkflow(ctx workflow.Context, in types.RefreshInput) error {
	retry := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    5,
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy:         retry,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	// Schedule-triggered runs arrive without a run ID.
	if in.RunID == "" {
		var id string
		if err := workflow.SideEffect(ctx, func(workflow.Context) interface{} {
			return uuid.NewString()
		}).Get(&id); err != nil {
			return err
		}
		in.RunID = id
	}

	startedAt := workflow.Now(ctx).UTC()
	timings := make(map[string]float64)
	record := types.RecordRunInput{
		RunID:     in.RunID,
		StartedAt: startedAt.UnixMicro(),
	}

	fail := func(step string, err error) error {
		record.Status = warehousemodels.RunStatusFailed
		record.Error = step + ": " + err.Error()
		wc.finishRecord(ctx, &record, startedAt, timings)
		// Best effort: the refresh already failed, a failed audit write
		// should not mask the original error.
		_ = workflow.ExecuteActivity(ctx, wc.ActivityContext.RecordRun, record).Get(ctx, nil)
		return err
	}

	// 1. Discover new and changed source files.
	var discover types.DiscoverFilesOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.DiscoverFiles, in).Get(ctx, &discover); err != nil {
		return fail("discover", err)
	}
	timings["discover_ms"] = discover.DurationMs
	record.FilesDiscovered = discover.Discovered

	// 2. Ingest them into bronze.
	var ingest types.IngestFilesOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.IngestFiles, types.IngestFilesInput{Files: discover.Files}).Get(ctx, &ingest); err != nil {
		return fail("ingest", err)
	}
	timings["ingest_ms"] = ingest.DurationMs
	record.FilesIngested = ingest.FilesIngested
	record.FilesQuarantined = ingest.FilesQuarantined
	record.RowsIngested = ingest.RowsIngested

	// 3. Recompute silver.
	var silver types.RefreshSilverOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.RefreshSilver, in).Get(ctx, &silver); err != nil {
		return fail("silver", err)
	}
	timings["silver_ms"] = silver.DurationMs
	record.RowsAccepted = silver.RowsAccepted
	record.RowsRejected = silver.RowsRejected

	// 4. Rebuild both gold rollups in parallel.
	dailyFuture := workflow.ExecuteActivity(ctx, wc.ActivityContext.RefreshDailySales, in)
	metricsFuture := workflow.ExecuteActivity(ctx, wc.ActivityContext.RefreshCustomerMetrics, in)

	var daily types.RefreshDailySalesOutput
	if err := dailyFuture.Get(ctx, &daily); err != nil {
		return fail("daily_sales", err)
	}
	timings["daily_sales_ms"] = daily.DurationMs

	var metrics types.RefreshCustomerMetricsOutput
	if err := metricsFuture.Get(ctx, &metrics); err != nil {
		return fail("customer_metrics", err)
	}
	timings["customer_metrics_ms"] = metrics.DurationMs

	// 5. Refresh dimensions, then facts.
	var dims types.RefreshDimensionsOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.RefreshDimensions, in).Get(ctx, &dims); err != nil {
		return fail("dimensions", err)
	}
	timings["dimensions_ms"] = dims.DurationMs

	var facts types.RefreshFactsOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.RefreshFacts, in).Get(ctx, &facts); err != nil {
		return fail("facts", err)
	}
	timings["facts_ms"] = facts.DurationMs
	record.FactsWritten = facts.FactsWritten
	record.FactsUnresolved = facts.FactsUnresolved

	// 6. Record the run.
	record.Status = warehousemodels.RunStatusSuccess
	wc.finishRecord(ctx, &record, startedAt, timings)
	return workflow.ExecuteActivity(ctx, wc.ActivityContext.RecordRun, record).Get(ctx, nil)
}

// finishRecord stamps duration and the timing breakdown onto the run record.
func (wc *Context) finishRecord(ctx workflow.Context, record *types.RecordRunInput, startedAt time.Time, timings map[string]float64) {
	record.DurationMs = float64(workflow.Now(ctx).Sub(startedAt).Microseconds()) / 1000.0

	detailBytes, err := json.Marshal(timings)
	if err != nil {
		detailBytes = []byte("{}")
	}
	record.Detail = string(detailBytes)
}
