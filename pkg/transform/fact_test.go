package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// TestParseJoinPolicy covers the accepted spellings and the default.
func TestParseJoinPolicy(t *testing.T) {
	policy, err := ParseJoinPolicy("")
	require.NoError(t, err)
	assert.Equal(t, JoinPolicyDrop, policy)

	policy, err = ParseJoinPolicy(" Flag ")
	require.NoError(t, err)
	assert.Equal(t, JoinPolicyFlag, policy)

	_, err = ParseJoinPolicy("outer")
	assert.Error(t, err)
}

// TestBuildFacts_ResolvesAllDimensions verifies a fully-matching row resolves
// every key.
func TestBuildFacts_ResolvesAllDimensions(t *testing.T) {
	rows := []*warehousemodels.SilverSale{
		silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "100.00"),
	}
	dims := BuildDimensions(rows, NewKeyAssignments(), sequentialKeys())

	facts, report := BuildFacts(rows, NewFactLookup(dims), JoinPolicyDrop, time.Now().UTC())

	require.Len(t, facts, 1)
	fact := facts[0]
	assert.True(t, fact.Resolved())
	require.NotNil(t, fact.CustomerKey)
	require.NotNil(t, fact.ProductKey)
	require.NotNil(t, fact.LocationKey)
	require.NotNil(t, fact.DateKey)
	assert.Equal(t, dims.Customers[0].CustomerKey, *fact.CustomerKey)
	assert.Equal(t, dims.Products[0].ProductKey, *fact.ProductKey)
	assert.Equal(t, dims.Locations[0].LocationKey, *fact.LocationKey)
	assert.Equal(t, dims.Dates[0].DateKey, *fact.DateKey)

	assert.Equal(t, uint64(1), report.Written)
	assert.Equal(t, uint64(0), report.Unresolved)
	assert.Equal(t, uint64(0), report.Dropped)
}

// TestBuildFacts_DropPolicy verifies unresolved rows are excluded under drop.
func TestBuildFacts_DropPolicy(t *testing.T) {
	good := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "100.00")
	orphan := silverRow("tx-2", "Grace Hopper", "Electronics", "2024-01-01", "50.00")
	orphan.ProductID = good.ProductID
	orphan.Email = nil // breaks the customer equi-join

	dims := BuildDimensions([]*warehousemodels.SilverSale{good}, NewKeyAssignments(), sequentialKeys())
	facts, report := BuildFacts([]*warehousemodels.SilverSale{good, orphan}, NewFactLookup(dims), JoinPolicyDrop, time.Now().UTC())

	require.Len(t, facts, 1)
	assert.Equal(t, "tx-1", facts[0].TransactionID)
	assert.Equal(t, uint64(1), report.Written)
	assert.Equal(t, uint64(1), report.Unresolved)
	assert.Equal(t, uint64(1), report.Dropped)
	assert.Equal(t, uint64(1), report.ByDim[DimNameCustomer])
}

// TestBuildFacts_FlagPolicy verifies unresolved rows are kept with null keys
// and markers under flag.
func TestBuildFacts_FlagPolicy(t *testing.T) {
	good := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "100.00")
	orphan := silverRow("tx-2", "Nobody", "Electronics", "2024-01-01", "50.00")
	orphan.Email = strPtr("nobody@example.com")
	orphan.ProductID = good.ProductID

	dims := BuildDimensions([]*warehousemodels.SilverSale{good}, NewKeyAssignments(), sequentialKeys())
	facts, report := BuildFacts([]*warehousemodels.SilverSale{good, orphan}, NewFactLookup(dims), JoinPolicyFlag, time.Now().UTC())

	require.Len(t, facts, 2)
	flagged := facts[1]
	assert.False(t, flagged.Resolved())
	assert.Nil(t, flagged.CustomerKey)
	assert.Contains(t, flagged.UnresolvedDims, DimNameCustomer)
	// Product, location and date all match the known dimensions.
	assert.NotNil(t, flagged.ProductKey)

	assert.Equal(t, uint64(2), report.Written)
	assert.Equal(t, uint64(1), report.Unresolved)
	assert.Equal(t, uint64(0), report.Dropped)
}

// TestBuildFacts_NullJoinAttribute verifies a null join attribute fails that
// dimension the way a SQL equi-join does.
func TestBuildFacts_NullJoinAttribute(t *testing.T) {
	row := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "100.00")
	dims := BuildDimensions([]*warehousemodels.SilverSale{row}, NewKeyAssignments(), sequentialKeys())

	row.City = nil
	row.TransactionDate = nil

	facts, report := BuildFacts([]*warehousemodels.SilverSale{row}, NewFactLookup(dims), JoinPolicyFlag, time.Now().UTC())

	require.Len(t, facts, 1)
	assert.Contains(t, facts[0].UnresolvedDims, DimNameLocation)
	assert.Contains(t, facts[0].UnresolvedDims, DimNameDate)
	assert.NotContains(t, facts[0].UnresolvedDims, DimNameCustomer)
	assert.Equal(t, uint64(1), report.ByDim[DimNameLocation])
}

// TestNewFactLookup_FirstRowWins verifies a join set matching several
// dimension rows resolves to the first row in canonical order.
func TestNewFactLookup_FirstRowWins(t *testing.T) {
	cheap := silverRow("tx-1", "Ada Lovelace", "Electronics", "2024-01-01", "10.00")
	dear := silverRow("tx-2", "Ada Lovelace", "Electronics", "2024-01-01", "20.00")
	cheap.ProductID = "p-1"
	dear.ProductID = "p-1"
	dear.Price = decPtr("99.00")

	dims := BuildDimensions([]*warehousemodels.SilverSale{cheap, dear}, NewKeyAssignments(), sequentialKeys())
	require.Len(t, dims.Products, 2)

	lookup := NewFactLookup(dims)
	facts, _ := BuildFacts([]*warehousemodels.SilverSale{cheap, dear}, lookup, JoinPolicyDrop, time.Now().UTC())

	require.Len(t, facts, 2)
	// Both rows resolve to the same product key, the first in canonical order.
	assert.Equal(t, *facts[0].ProductKey, *facts[1].ProductKey)
	assert.Equal(t, dims.Products[0].ProductKey, *facts[0].ProductKey)
}
