package temporal

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/api/enums/v1"
	taskqueuepb "go.temporal.io/api/taskqueue/v1"
	workflowservicepb "go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/pkg/utils"
)

// Queue and schedule identifiers.
const (
	PipelineQueue     = "pipeline"
	RefreshScheduleID = "refresh"
)

// Workflow ID pattern: one refresh workflow per trigger instant. Temporal
// dedupes by workflow ID, so a watcher tick and a manual trigger landing on
// the same second collapse into a single run.
const refreshWorkflowIDPattern = "refresh:%s"

type Client struct {
	TClient   client.Client
	TSClient  client.ScheduleClient
	Namespace string
}

type Health struct {
	ConnectionOK  bool                      `json:"connection_ok"`
	PipelineQueue []*taskqueuepb.PollerInfo `json:"pipeline_queue"`
}

// NewClient connects to Temporal using TEMPORAL_HOSTPORT and
// TEMPORAL_NAMESPACE and verifies the connection.
func NewClient(ctx context.Context, logger *zap.Logger) (*Client, error) {
	host := utils.Env("TEMPORAL_HOSTPORT", "localhost:7233")
	ns := utils.Env("TEMPORAL_NAMESPACE", "salespipe")
	loggerWrapper := NewZapAdapter(logger)

	logger.Info("Connecting to Temporal", zap.String("host", host), zap.String("namespace", ns))
	tClient, err := Dial(ctx, host, ns, loggerWrapper)
	if err != nil {
		return nil, err
	}

	if _, err = tClient.CheckHealth(ctx, nil); err != nil {
		return nil, err
	}

	return &Client{
		TClient:   tClient,
		TSClient:  tClient.ScheduleClient(),
		Namespace: ns,
	}, nil
}

// Dial connects to Temporal using the provided hostPort and namespace.
func Dial(ctx context.Context, hostPort, namespace string, logger log.Logger) (client.Client, error) {
	return client.DialContext(
		ctx,
		client.Options{
			HostPort:  hostPort,
			Namespace: namespace,
			Logger:    logger,
		},
	)
}

// GetRefreshWorkflowID returns the workflow ID for a refresh triggered at t.
func (c *Client) GetRefreshWorkflowID(t time.Time) string {
	return fmt.Sprintf(refreshWorkflowIDPattern, t.UTC().Format("20060102T150405"))
}

// GetScheduleSpec returns a schedule spec for the given interval.
func (c *Client) GetScheduleSpec(interval time.Duration) client.ScheduleSpec {
	return client.ScheduleSpec{Intervals: []client.ScheduleIntervalSpec{{Every: interval}}}
}

// Health returns the health of the Temporal client.
func (c *Client) Health(ctx context.Context) (Health, error) {
	h := Health{ConnectionOK: true}
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	svc := c.TClient.WorkflowService()
	if svc != nil {
		if rep, err := svc.DescribeTaskQueue(ctx, &workflowservicepb.DescribeTaskQueueRequest{
			Namespace:     c.Namespace,
			TaskQueue:     &taskqueuepb.TaskQueue{Name: PipelineQueue},
			TaskQueueType: enums.TASK_QUEUE_TYPE_WORKFLOW,
		}); err == nil {
			h.PipelineQueue = rep.GetPollers()
		}
	}
	return h, nil
}
