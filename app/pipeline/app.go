package pipeline

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	temporalworkflow "go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/pipeline/activity"
	"github.com/xyz-retail/salespipe/app/pipeline/types"
	"github.com/xyz-retail/salespipe/app/pipeline/watcher"
	"github.com/xyz-retail/salespipe/app/pipeline/workflow"
	"github.com/xyz-retail/salespipe/pkg/db/warehouse"
	"github.com/xyz-retail/salespipe/pkg/logging"
	"github.com/xyz-retail/salespipe/pkg/redis"
	"github.com/xyz-retail/salespipe/pkg/temporal"
	"github.com/xyz-retail/salespipe/pkg/transform"
	"github.com/xyz-retail/salespipe/pkg/utils"
)

type App struct {
	Worker         worker.Worker
	Watcher        *watcher.Watcher
	TemporalClient *temporal.Client
	DB             warehouse.Store
	Logger         *zap.Logger
}

// Start starts the worker and the watcher and blocks until the context is
// canceled.
func (a *App) Start(ctx context.Context) {
	if err := a.Worker.Start(); err != nil {
		a.Logger.Fatal("Unable to start worker", zap.Error(err))
	}
	if err := a.Watcher.Start(ctx); err != nil {
		a.Logger.Fatal("Unable to start watcher", zap.Error(err))
	}
	<-ctx.Done()
	a.Stop()
}

// Stop stops the watcher and worker.
func (a *App) Stop() {
	a.Watcher.Stop()
	a.Worker.Stop()
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("Pipeline stopped")
}

// Initialize initializes the application: warehouse, Temporal worker, source
// watcher and the optional periodic refresh schedule.
func Initialize(ctx context.Context) *App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	db, dbErr := warehouse.New(ctx, logger)
	if dbErr != nil {
		logger.Fatal("Unable to initialize warehouse", zap.Error(dbErr))
	}

	temporalClient, err := temporal.NewClient(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to establish temporal connection", zap.Error(err))
	}

	joinPolicy, policyErr := transform.ParseJoinPolicy(utils.Env("FACT_JOIN_POLICY", "drop"))
	if policyErr != nil {
		logger.Fatal("Invalid FACT_JOIN_POLICY", zap.Error(policyErr))
	}

	var redisClient *redis.Client
	if utils.EnvBool("REDIS_ENABLED", false) {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Fatal("Unable to establish redis connection", zap.Error(err))
		}
	}

	activityContext := &activity.Context{
		Logger:            logger,
		DB:                db,
		SourceDir:         utils.Env("SOURCE_DIR", "/data/sales"),
		JoinPolicy:        joinPolicy,
		RedisClient:       redisClient,
		IngestParallelism: utils.EnvInt("INGEST_PARALLELISM", 4),
	}
	workflowContext := workflow.Context{
		TemporalClient:  temporalClient,
		ActivityContext: activityContext,
	}

	wkr := worker.New(
		temporalClient.TClient,
		temporal.PipelineQueue,
		worker.Options{
			MaxConcurrentWorkflowTaskPollers: 4,
			MaxConcurrentActivityTaskPollers: 4,
			WorkerStopTimeout:                1 * time.Minute,
		},
	)

	wkr.RegisterWorkflowWithOptions(
		workflowContext.RefreshWorkflow,
		temporalworkflow.RegisterOptions{
			Name: workflow.RefreshWorkflowName,
		},
	)
	wkr.RegisterActivity(activityContext.DiscoverFiles)
	wkr.RegisterActivity(activityContext.IngestFiles)
	wkr.RegisterActivity(activityContext.RefreshSilver)
	wkr.RegisterActivity(activityContext.RefreshDailySales)
	wkr.RegisterActivity(activityContext.RefreshCustomerMetrics)
	wkr.RegisterActivity(activityContext.RefreshDimensions)
	wkr.RegisterActivity(activityContext.RefreshFacts)
	wkr.RegisterActivity(activityContext.RecordRun)

	app := &App{
		Worker:         wkr,
		TemporalClient: temporalClient,
		DB:             db,
		Logger:         logger,
		Watcher: watcher.New(
			logger,
			temporalClient,
			redisClient,
			activityContext.SourceDir,
			utils.Env("SCAN_CRON", "*/15 * * * * *"),
		),
	}

	if interval := utils.EnvDuration("REFRESH_INTERVAL", 0); interval > 0 {
		if err := app.ensureRefreshSchedule(ctx, interval); err != nil {
			logger.Fatal("Unable to ensure refresh schedule", zap.Error(err))
		}
	}

	return app
}

// ensureRefreshSchedule creates the periodic refresh schedule if it does not
// already exist. The schedule is a safety net behind the watcher: it picks up
// changes the watcher missed (e.g. while the pipeline was down).
func (a *App) ensureRefreshSchedule(ctx context.Context, interval time.Duration) error {
	h := a.TemporalClient.TSClient.GetHandle(ctx, temporal.RefreshScheduleID)
	if _, err := h.Describe(ctx); err == nil {
		a.Logger.Info("Refresh schedule already exists",
			zap.String("id", temporal.RefreshScheduleID))
		return nil
	} else {
		var notFound *serviceerror.NotFound
		if !errors.As(err, &notFound) {
			return err
		}
	}

	a.Logger.Info("Creating refresh schedule",
		zap.String("id", temporal.RefreshScheduleID),
		zap.Duration("interval", interval))
	_, err := a.TemporalClient.TSClient.Create(ctx, client.ScheduleOptions{
		ID:   temporal.RefreshScheduleID,
		Spec: a.TemporalClient.GetScheduleSpec(interval),
		Action: &client.ScheduleWorkflowAction{
			Workflow:                 workflow.RefreshWorkflowName,
			Args:                     []interface{}{types.RefreshInput{Trigger: types.TriggerSchedule}},
			TaskQueue:                temporal.PipelineQueue,
			WorkflowExecutionTimeout: 30 * time.Minute,
			WorkflowTaskTimeout:      2 * time.Minute,
		},
	})
	return err
}
