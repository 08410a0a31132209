package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/pipeline/types"
	"github.com/xyz-retail/salespipe/pkg/transform"
)

// RefreshDimensions rebuilds the four dimension tables from the silver
// snapshot. Surrogate keys already persisted are loaded first and reused, so
// a tuple keeps its key across refreshes; only tuples never seen before get
// fresh UUIDs.
func (c *Context) RefreshDimensions(ctx context.Context, _ types.RefreshInput) (types.RefreshDimensionsOutput, error) {
	start := time.Now()

	silver, err := c.DB.GetSilverSnapshot(ctx)
	if err != nil {
		return types.RefreshDimensionsOutput{}, err
	}

	existing, err := c.DB.GetKeyAssignments(ctx)
	if err != nil {
		return types.RefreshDimensionsOutput{}, err
	}
	existingCount := len(existing.Locations) + len(existing.Customers) + len(existing.Products)

	dims := transform.BuildDimensions(silver, existing, uuid.New)

	if err := c.DB.InsertDimensions(ctx, dims); err != nil {
		return types.RefreshDimensionsOutput{}, err
	}

	totalKeys := len(dims.Keys.Locations) + len(dims.Keys.Customers) + len(dims.Keys.Products)
	newKeys := uint64(0)
	if totalKeys > existingCount {
		newKeys = uint64(totalKeys - existingCount)
	}

	c.Logger.Info("Refreshed dimensions",
		zap.Int("locations", len(dims.Locations)),
		zap.Int("customers", len(dims.Customers)),
		zap.Int("products", len(dims.Products)),
		zap.Int("dates", len(dims.Dates)),
		zap.Uint64("newKeys", newKeys))

	return types.RefreshDimensionsOutput{
		Locations:  uint64(len(dims.Locations)),
		Customers:  uint64(len(dims.Customers)),
		Products:   uint64(len(dims.Products)),
		Dates:      uint64(len(dims.Dates)),
		NewKeys:    newKeys,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// RefreshFacts re-derives the fact table by resolving every silver row
// against the persisted dimensions under the configured join policy.
func (c *Context) RefreshFacts(ctx context.Context, _ types.RefreshInput) (types.RefreshFactsOutput, error) {
	start := time.Now()

	silver, err := c.DB.GetSilverSnapshot(ctx)
	if err != nil {
		return types.RefreshFactsOutput{}, err
	}

	dims, err := c.loadDimensions(ctx)
	if err != nil {
		return types.RefreshFactsOutput{}, err
	}

	lookup := transform.NewFactLookup(dims)
	facts, report := transform.BuildFacts(silver, lookup, c.JoinPolicy, time.Now().UTC())

	if err := c.DB.InsertFacts(ctx, facts); err != nil {
		return types.RefreshFactsOutput{}, err
	}

	c.Logger.Info("Refreshed facts",
		zap.String("policy", string(c.JoinPolicy)),
		zap.Uint64("written", report.Written),
		zap.Uint64("unresolved", report.Unresolved),
		zap.Uint64("dropped", report.Dropped))

	return types.RefreshFactsOutput{
		FactsWritten:    report.Written,
		FactsUnresolved: report.Unresolved,
		FactsDropped:    report.Dropped,
		DurationMs:      float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// loadDimensions reads the persisted dimensional layer back into memory for
// fact resolution.
func (c *Context) loadDimensions(ctx context.Context) (transform.Dimensions, error) {
	var dims transform.Dimensions
	var err error

	if dims.Locations, err = c.DB.GetDimLocations(ctx); err != nil {
		return dims, err
	}
	if dims.Customers, err = c.DB.GetDimCustomers(ctx); err != nil {
		return dims, err
	}
	if dims.Products, err = c.DB.GetDimProducts(ctx); err != nil {
		return dims, err
	}
	if dims.Dates, err = c.DB.GetDimDates(ctx); err != nil {
		return dims, err
	}
	return dims, nil
}
