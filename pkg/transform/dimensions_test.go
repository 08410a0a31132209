package transform

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// sequentialKeys returns a deterministic surrogate key generator.
func sequentialKeys() func() uuid.UUID {
	var n byte
	return func() uuid.UUID {
		n++
		return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012x", n))
	}
}

// TestBuildDimensions_Dedup verifies each natural tuple yields exactly one
// dimension row regardless of how many silver rows carry it.
func TestBuildDimensions_Dedup(t *testing.T) {
	rows := []*warehousemodels.SilverSale{
		silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "10.00"),
		silverRow("tx-2", "Ada Lovelace", "Electronics", "2024-01-01", "20.00"),
		silverRow("tx-3", "Grace Hopper", "Electronics", "2024-01-02", "30.00"),
	}
	// Same product tuple on every row.
	for _, row := range rows {
		row.ProductID = "p-1"
	}

	dims := BuildDimensions(rows, NewKeyAssignments(), sequentialKeys())

	assert.Len(t, dims.Locations, 1)
	assert.Len(t, dims.Customers, 2)
	assert.Len(t, dims.Products, 1)
	assert.Len(t, dims.Dates, 2)

	require.Len(t, dims.Dates, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), dims.Dates[0].DateKey)
	assert.Equal(t, uint16(2024), dims.Dates[0].Year)
	assert.Equal(t, uint8(1), dims.Dates[0].Month)
	assert.Equal(t, uint8(1), dims.Dates[0].Day)
}

// TestBuildDimensions_KeyStability verifies a tuple known from a previous
// refresh keeps its surrogate key and only unseen tuples get fresh ones.
func TestBuildDimensions_KeyStability(t *testing.T) {
	first := BuildDimensions([]*warehousemodels.SilverSale{
		silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "10.00"),
	}, NewKeyAssignments(), sequentialKeys())

	adaKey := first.Customers[0].CustomerKey

	// Second refresh sees Ada again plus a new customer.
	second := BuildDimensions([]*warehousemodels.SilverSale{
		silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "10.00"),
		silverRow("tx-2", "Grace Hopper", "Electronics", "2024-01-01", "20.00"),
	}, first.Keys, sequentialKeys())

	require.Len(t, second.Customers, 2)
	assert.Equal(t, adaKey, second.Customers[0].CustomerKey)
	assert.NotEqual(t, adaKey, second.Customers[1].CustomerKey)

	// Location and product tuples repeat, so their keys carry over too.
	assert.Equal(t, first.Locations[0].LocationKey, second.Locations[0].LocationKey)
}

// TestBuildDimensions_CustomerLocation verifies a customer seen under two
// locations keeps the location of its first occurrence.
func TestBuildDimensions_CustomerLocation(t *testing.T) {
	a := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "10.00")
	b := silverRow("tx-2", "Ada Lovelace", "Electronics", "2024-01-02", "20.00")
	b.City = strPtr("Paris")

	dims := BuildDimensions([]*warehousemodels.SilverSale{a, b}, NewKeyAssignments(), sequentialKeys())

	require.Len(t, dims.Customers, 1)
	require.Len(t, dims.Locations, 2)

	var londonKey uuid.UUID
	for _, loc := range dims.Locations {
		if loc.City == "London" {
			londonKey = loc.LocationKey
		}
	}
	assert.Equal(t, londonKey, dims.Customers[0].LocationKey)
}

// TestBuildDimensions_NullAttributes verifies null attributes canonicalize to
// empty strings and a null price keys as "0.00".
func TestBuildDimensions_NullAttributes(t *testing.T) {
	row := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "10.00")
	row.DeliveryAddress = nil
	row.Price = nil

	dims := BuildDimensions([]*warehousemodels.SilverSale{row}, NewKeyAssignments(), sequentialKeys())

	require.Len(t, dims.Locations, 1)
	assert.Equal(t, "", dims.Locations[0].DeliveryAddress)
	require.Len(t, dims.Products, 1)
	assert.True(t, dims.Products[0].Price.IsZero())
}

// TestBuildDimensions_CanonicalOrder verifies the dimension slices come back
// in their table ORDER BY order.
func TestBuildDimensions_CanonicalOrder(t *testing.T) {
	a := silverRow("tx-1", "Grace Hopper", "Electronics", "2024-01-02", "10.00")
	b := silverRow("tx-2", "Ada Lovelace", "Electronics", "2024-01-01", "20.00")

	dims := BuildDimensions([]*warehousemodels.SilverSale{a, b}, NewKeyAssignments(), sequentialKeys())

	require.Len(t, dims.Customers, 2)
	assert.Equal(t, "Ada Lovelace", dims.Customers[0].CustomerName)
	assert.Equal(t, "Grace Hopper", dims.Customers[1].CustomerName)
	require.Len(t, dims.Dates, 2)
	assert.True(t, dims.Dates[0].DateKey.Before(dims.Dates[1].DateKey))
}
