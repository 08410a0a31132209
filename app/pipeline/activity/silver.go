package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/pipeline/types"
	"github.com/xyz-retail/salespipe/pkg/transform"
)

// RefreshSilver recomputes the cleansed layer from the full bronze snapshot.
// Rows missing transaction_id or product_id are rejected; both counts go into
// the run record so accepted+rejected always reconciles against bronze.
func (c *Context) RefreshSilver(ctx context.Context, _ types.RefreshInput) (types.RefreshSilverOutput, error) {
	start := time.Now()

	bronze, err := c.DB.GetBronzeSnapshot(ctx)
	if err != nil {
		return types.RefreshSilverOutput{}, err
	}

	silver, report := transform.Cleanse(bronze)

	if err := c.DB.InsertSilver(ctx, silver); err != nil {
		return types.RefreshSilverOutput{}, err
	}

	c.Logger.Info("Refreshed silver layer",
		zap.Uint64("accepted", report.Accepted),
		zap.Uint64("rejected", report.Rejected))

	return types.RefreshSilverOutput{
		RowsAccepted: report.Accepted,
		RowsRejected: report.Rejected,
		DurationMs:   float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}
