package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// JoinPolicy decides what happens to a silver row that cannot resolve one of
// its dimension keys.
type JoinPolicy string

const (
	// JoinPolicyDrop excludes unresolved rows from fact_sales (inner join).
	JoinPolicyDrop JoinPolicy = "drop"
	// JoinPolicyFlag keeps unresolved rows with null keys and the failing
	// dimensions recorded in unresolved_dims (left join with markers).
	JoinPolicyFlag JoinPolicy = "flag"
)

// Dimension names used in unresolved_dims markers.
const (
	DimNameCustomer = "customer"
	DimNameProduct  = "product"
	DimNameLocation = "location"
	DimNameDate     = "date"
)

// ParseJoinPolicy validates a policy string, defaulting the empty string to
// drop.
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch JoinPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case JoinPolicyDrop, "":
		return JoinPolicyDrop, nil
	case JoinPolicyFlag:
		return JoinPolicyFlag, nil
	default:
		return "", fmt.Errorf("unknown join policy %q (want %q or %q)", s, JoinPolicyDrop, JoinPolicyFlag)
	}
}

// FactReport summarizes one fact-resolution pass.
type FactReport struct {
	Written    uint64            `json:"written"`
	Unresolved uint64            `json:"unresolved"`
	Dropped    uint64            `json:"dropped"`
	ByDim      map[string]uint64 `json:"by_dim"`
}

// FactLookup indexes a built dimensional layer by the attribute sets the fact
// table joins on. Note the join sets are narrower than the dedup tuples:
// customers join on (customer_name, email), locations on (city, state,
// zip_code) and products on product_id alone. When a join set matches several
// dimension rows (e.g. one product_id at two prices) the first row in the
// dimension's canonical order wins, so resolution never fans out.
type FactLookup struct {
	customers map[CustomerTuple]uuid.UUID
	products  map[string]uuid.UUID
	locations map[[3]string]uuid.UUID
	dates     map[time.Time]struct{}
}

// NewFactLookup builds the join index from a dimensional layer.
func NewFactLookup(dims Dimensions) *FactLookup {
	l := &FactLookup{
		customers: make(map[CustomerTuple]uuid.UUID, len(dims.Customers)),
		products:  make(map[string]uuid.UUID, len(dims.Products)),
		locations: make(map[[3]string]uuid.UUID, len(dims.Locations)),
		dates:     make(map[time.Time]struct{}, len(dims.Dates)),
	}
	for _, c := range dims.Customers {
		key := CustomerTuple{CustomerName: c.CustomerName, Email: c.Email}
		if _, ok := l.customers[key]; !ok {
			l.customers[key] = c.CustomerKey
		}
	}
	for _, p := range dims.Products {
		if _, ok := l.products[p.ProductID]; !ok {
			l.products[p.ProductID] = p.ProductKey
		}
	}
	for _, loc := range dims.Locations {
		key := [3]string{loc.City, loc.State, loc.ZipCode}
		if _, ok := l.locations[key]; !ok {
			l.locations[key] = loc.LocationKey
		}
	}
	for _, d := range dims.Dates {
		l.dates[d.DateKey] = struct{}{}
	}
	return l
}

// BuildFacts resolves each silver row against the dimensional layer under the
// given policy. A null join attribute fails that dimension's equi-join, the
// same way SQL equality fails on NULL.
func BuildFacts(rows []*warehousemodels.SilverSale, lookup *FactLookup, policy JoinPolicy, refreshedAt time.Time) ([]*warehousemodels.FactSale, FactReport) {
	report := FactReport{ByDim: make(map[string]uint64)}
	out := make([]*warehousemodels.FactSale, 0, len(rows))

	for _, row := range rows {
		fact := &warehousemodels.FactSale{
			TransactionID: row.TransactionID,
			Quantity:      row.Quantity,
			Price:         row.Price,
			Discount:      row.Discount,
			TotalAmount:   row.TotalAmount,
			PaymentMethod: row.PaymentMethod,
			SourceFile:    row.SourceFile,
			SourceSeq:     row.SourceSeq,
			RefreshedAt:   refreshedAt,
		}
		fact.UnresolvedDims = []string{}

		if row.CustomerName != nil && row.Email != nil {
			if key, ok := lookup.customers[CustomerTuple{CustomerName: *row.CustomerName, Email: *row.Email}]; ok {
				k := key
				fact.CustomerKey = &k
			}
		}
		if fact.CustomerKey == nil {
			fact.UnresolvedDims = append(fact.UnresolvedDims, DimNameCustomer)
		}

		if key, ok := lookup.products[row.ProductID]; ok {
			k := key
			fact.ProductKey = &k
		} else {
			fact.UnresolvedDims = append(fact.UnresolvedDims, DimNameProduct)
		}

		if row.City != nil && row.State != nil && row.ZipCode != nil {
			if key, ok := lookup.locations[[3]string{*row.City, *row.State, *row.ZipCode}]; ok {
				k := key
				fact.LocationKey = &k
			}
		}
		if fact.LocationKey == nil {
			fact.UnresolvedDims = append(fact.UnresolvedDims, DimNameLocation)
		}

		if row.TransactionDate != nil {
			date := dateOf(row.TransactionDate)
			if _, ok := lookup.dates[date]; ok {
				fact.DateKey = &date
			}
		}
		if fact.DateKey == nil {
			fact.UnresolvedDims = append(fact.UnresolvedDims, DimNameDate)
		}

		if !fact.Resolved() {
			report.Unresolved++
			for _, dim := range fact.UnresolvedDims {
				report.ByDim[dim]++
			}
			if policy == JoinPolicyDrop {
				report.Dropped++
				continue
			}
		}

		report.Written++
		out = append(out, fact)
	}

	return out, report
}
