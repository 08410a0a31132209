package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/pipeline/types"
	"github.com/xyz-retail/salespipe/pkg/transform"
)

// RefreshDailySales rebuilds the per-day, per-category rollup from the silver
// snapshot. Runs in parallel with RefreshCustomerMetrics; both read the same
// silver state and write disjoint tables.
func (c *Context) RefreshDailySales(ctx context.Context, _ types.RefreshInput) (types.RefreshDailySalesOutput, error) {
	start := time.Now()

	silver, err := c.DB.GetSilverSnapshot(ctx)
	if err != nil {
		return types.RefreshDailySalesOutput{}, err
	}

	rollup := transform.DailySales(silver, time.Now().UTC())

	if err := c.DB.InsertDailySales(ctx, rollup); err != nil {
		return types.RefreshDailySalesOutput{}, err
	}

	c.Logger.Info("Refreshed daily sales rollup", zap.Int("groups", len(rollup)))

	return types.RefreshDailySalesOutput{
		Groups:     uint64(len(rollup)),
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// RefreshCustomerMetrics rebuilds the per-customer rollup from the silver
// snapshot.
func (c *Context) RefreshCustomerMetrics(ctx context.Context, _ types.RefreshInput) (types.RefreshCustomerMetricsOutput, error) {
	start := time.Now()

	silver, err := c.DB.GetSilverSnapshot(ctx)
	if err != nil {
		return types.RefreshCustomerMetricsOutput{}, err
	}

	rollup := transform.CustomerMetrics(silver, time.Now().UTC())

	if err := c.DB.InsertCustomerMetrics(ctx, rollup); err != nil {
		return types.RefreshCustomerMetricsOutput{}, err
	}

	c.Logger.Info("Refreshed customer metrics rollup", zap.Int("customers", len(rollup)))

	return types.RefreshCustomerMetricsOutput{
		Customers:  uint64(len(rollup)),
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}
