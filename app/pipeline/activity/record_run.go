package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/pipeline/types"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// RecordRun persists the audit record for one refresh and publishes it as a
// run event. Publishing is best-effort; the run record is not.
func (c *Context) RecordRun(ctx context.Context, in types.RecordRunInput) error {
	finishedAt := time.Now().UTC()

	run := &warehousemodels.PipelineRun{
		RunID:            in.RunID,
		StartedAt:        time.UnixMicro(in.StartedAt).UTC(),
		FinishedAt:       finishedAt,
		Status:           in.Status,
		FilesDiscovered:  in.FilesDiscovered,
		FilesIngested:    in.FilesIngested,
		FilesQuarantined: in.FilesQuarantined,
		RowsIngested:     in.RowsIngested,
		RowsAccepted:     in.RowsAccepted,
		RowsRejected:     in.RowsRejected,
		FactsWritten:     in.FactsWritten,
		FactsUnresolved:  in.FactsUnresolved,
		Error:            in.Error,
		DurationMs:       in.DurationMs,
		Detail:           in.Detail,
	}

	if err := c.DB.InsertPipelineRun(ctx, run); err != nil {
		return err
	}

	if c.RedisClient != nil {
		c.RedisClient.PublishRun(ctx, run)
	}

	c.Logger.Info("Recorded pipeline run",
		zap.String("runId", run.RunID),
		zap.String("status", run.Status),
		zap.Float64("durationMs", run.DurationMs))

	return nil
}
