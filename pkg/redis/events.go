package redis

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// Run-event destinations. The stream keeps a capped history for late
// subscribers; the channel delivers live notifications.
const (
	RunsStream  = "salespipe:runs"
	RunsChannel = "salespipe:runs.finished"
)

// PublishRun emits one finished pipeline run to the stream and channel.
// Best-effort like the underlying calls.
func (c *Client) PublishRun(ctx context.Context, run *warehousemodels.PipelineRun) {
	payload, err := json.Marshal(run)
	if err != nil {
		c.logger.Warn("Failed to marshal run event",
			zap.String("runId", run.RunID),
			zap.Error(err))
		return
	}

	c.XAdd(ctx, RunsStream, map[string]interface{}{
		"run_id": run.RunID,
		"status": run.Status,
		"data":   string(payload),
	})
	c.Publish(ctx, RunsChannel, string(payload))
}
