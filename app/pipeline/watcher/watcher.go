package watcher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/pipeline/types"
	"github.com/xyz-retail/salespipe/app/pipeline/workflow"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
	"github.com/xyz-retail/salespipe/pkg/redis"
	"github.com/xyz-retail/salespipe/pkg/source"
	"github.com/xyz-retail/salespipe/pkg/temporal"
)

// Watcher polls the source directory on a cron spec and triggers a refresh
// workflow when a file appears or changes. The seen map keeps the watcher
// quiet between ticks; actual exactly-once bookkeeping lives in the ingest
// ledger, so a restart that re-triggers a refresh is harmless.
type Watcher struct {
	Logger         *zap.Logger
	TemporalClient *temporal.Client
	SourceDir      string
	CronSpec       string

	// RedisClient, when configured, feeds run events back into the watcher:
	// a failed run clears the seen map so the next tick re-triggers.
	RedisClient *redis.Client

	cron *cron.Cron
	seen *xsync.Map[string, string]
}

// New builds a watcher for the given directory.
func New(logger *zap.Logger, temporalClient *temporal.Client, redisClient *redis.Client, sourceDir, cronSpec string) *Watcher {
	return &Watcher{
		Logger:         logger,
		TemporalClient: temporalClient,
		RedisClient:    redisClient,
		SourceDir:      sourceDir,
		CronSpec:       cronSpec,
		seen:           xsync.NewMap[string, string](),
	}
}

// Start registers the cron job and starts ticking.
func (w *Watcher) Start(ctx context.Context) error {
	w.cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := w.cron.AddFunc(w.CronSpec, func() {
		// keep each tick bounded
		tctx, cancel := context.WithTimeout(ctx, 25*time.Second)
		defer cancel()
		if err := w.Tick(tctx); err != nil {
			w.Logger.Warn("Watcher tick failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	w.cron.Start()

	// immediate pass so a restart does not wait out the first cron interval
	go func() {
		tctx, cancel := context.WithTimeout(ctx, 25*time.Second)
		defer cancel()
		if err := w.Tick(tctx); err != nil {
			w.Logger.Warn("Initial scan failed", zap.Error(err))
		}
	}()

	if w.RedisClient != nil {
		if err := w.watchRunEvents(ctx); err != nil {
			return err
		}
	}

	w.Logger.Info("Watcher started",
		zap.String("dir", w.SourceDir),
		zap.String("cronSpec", w.CronSpec))
	return nil
}

// watchRunEvents consumes the run-event stream and forgets seen files when a
// run fails, so the failed batch is re-triggered on the next tick instead of
// waiting for the file to change again.
func (w *Watcher) watchRunEvents(ctx context.Context) error {
	consumer, err := redis.NewStreamConsumer(w.RedisClient, redis.StreamConsumerConfig{
		Stream: redis.RunsStream,
		Logger: w.Logger,
	})
	if err != nil {
		return err
	}

	go func() {
		_ = consumer.Run(ctx, func(_ context.Context, msg redis.Message) error {
			var run warehousemodels.PipelineRun
			if err := json.Unmarshal(msg.GetData(), &run); err != nil {
				return err
			}
			if run.Status != warehousemodels.RunStatusFailed {
				return nil
			}

			w.Logger.Warn("Run failed, rearming watcher",
				zap.String("runId", run.RunID),
				zap.String("error", run.Error))
			w.seen.Clear()
			return nil
		})
	}()

	return nil
}

// Stop stops the cron scheduler and waits for a running tick to finish.
func (w *Watcher) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

// Tick scans the directory once and triggers a refresh when anything new or
// changed shows up.
func (w *Watcher) Tick(ctx context.Context) error {
	files, err := source.Scan(w.SourceDir)
	if err != nil {
		return err
	}

	changed := 0
	for _, f := range files {
		if prev, ok := w.seen.Load(f.Name); ok && prev == f.Checksum {
			continue
		}
		w.seen.Store(f.Name, f.Checksum)
		changed++
	}

	if changed == 0 {
		return nil
	}

	w.Logger.Info("Source changes detected, triggering refresh",
		zap.Int("files", changed))
	return w.TriggerRefresh(ctx, types.TriggerWatcher)
}

// TriggerRefresh starts a refresh workflow. The workflow ID encodes the
// trigger instant, so concurrent triggers within the same second dedupe.
func (w *Watcher) TriggerRefresh(ctx context.Context, trigger string) error {
	opts := client.StartWorkflowOptions{
		ID:                    w.TemporalClient.GetRefreshWorkflowID(time.Now()),
		TaskQueue:             temporal.PipelineQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}

	in := types.RefreshInput{
		RunID:   uuid.NewString(),
		Trigger: trigger,
	}

	_, err := w.TemporalClient.TClient.ExecuteWorkflow(ctx, opts, workflow.RefreshWorkflowName, in)
	return err
}
