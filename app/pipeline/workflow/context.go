package workflow

import (
	"github.com/xyz-retail/salespipe/app/pipeline/activity"
	"github.com/xyz-retail/salespipe/pkg/temporal"
)

// RefreshWorkflowName registers the refresh workflow under a stable name so
// triggers do not depend on Go method identity.
const RefreshWorkflowName = "RefreshWorkflow"

type Context struct {
	TemporalClient  *temporal.Client
	ActivityContext *activity.Context
}
