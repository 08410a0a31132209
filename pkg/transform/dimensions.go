package transform

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// LocationTuple is the natural key of dim_location. Null attributes are
// canonicalized to empty strings before keying.
type LocationTuple struct {
	DeliveryAddress string
	City            string
	State           string
	ZipCode         string
}

// CustomerTuple is the natural key of dim_customer.
type CustomerTuple struct {
	CustomerName string
	Email        string
}

// ProductTuple is the natural key of dim_product. Price is held as a
// fixed-two-decimal string so the tuple is comparable; a null price
// canonicalizes to "0.00".
type ProductTuple struct {
	ProductID   string
	ProductName string
	Category    string
	Price       string
}

// KeyAssignments holds the surrogate keys already persisted in the dimension
// tables, keyed by natural tuple. BuildDimensions reuses these assignments so
// a tuple that existed before a refresh keeps its key forever; only unseen
// tuples receive fresh keys. This is what makes re-running the dimensional
// layer after new rows arrive a pure extension rather than a rebuild.
type KeyAssignments struct {
	Locations map[LocationTuple]uuid.UUID
	Customers map[CustomerTuple]uuid.UUID
	Products  map[ProductTuple]uuid.UUID
}

// NewKeyAssignments returns an empty assignment set.
func NewKeyAssignments() KeyAssignments {
	return KeyAssignments{
		Locations: make(map[LocationTuple]uuid.UUID),
		Customers: make(map[CustomerTuple]uuid.UUID),
		Products:  make(map[ProductTuple]uuid.UUID),
	}
}

// Dimensions is the fully-built dimensional layer for one refresh.
type Dimensions struct {
	Locations []*warehousemodels.DimLocation
	Customers []*warehousemodels.DimCustomer
	Products  []*warehousemodels.DimProduct
	Dates     []*warehousemodels.DimDate

	// Keys is the complete natural-key index (existing plus fresh
	// assignments), used by fact resolution and persisted implicitly through
	// the dimension tables.
	Keys KeyAssignments
}

// BuildDimensions derives the four dimension tables from a silver snapshot.
// Deduplication is by natural-key tuple; surrogate keys come from existing
// where present and from newKey otherwise (pass uuid.New in production,
// a counter in tests for determinism).
//
// A customer appearing under several locations keeps the location of its
// first occurrence in row order; silver snapshots are ordered by
// (source_file, source_seq), so the choice is stable across refreshes.
func BuildDimensions(rows []*warehousemodels.SilverSale, existing KeyAssignments, newKey func() uuid.UUID) Dimensions {
	dims := Dimensions{Keys: NewKeyAssignments()}
	for tuple, key := range existing.Locations {
		dims.Keys.Locations[tuple] = key
	}
	for tuple, key := range existing.Customers {
		dims.Keys.Customers[tuple] = key
	}
	for tuple, key := range existing.Products {
		dims.Keys.Products[tuple] = key
	}

	customerLocation := make(map[CustomerTuple]uuid.UUID)
	dates := make(map[time.Time]struct{})

	for _, row := range rows {
		loc := LocationTupleOf(row)
		locKey, ok := dims.Keys.Locations[loc]
		if !ok {
			locKey = newKey()
			dims.Keys.Locations[loc] = locKey
		}

		cust := CustomerTupleOf(row)
		if _, ok := dims.Keys.Customers[cust]; !ok {
			dims.Keys.Customers[cust] = newKey()
		}
		if _, ok := customerLocation[cust]; !ok {
			customerLocation[cust] = locKey
		}

		prod := ProductTupleOf(row)
		if _, ok := dims.Keys.Products[prod]; !ok {
			dims.Keys.Products[prod] = newKey()
		}

		if row.TransactionDate != nil {
			dates[dateOf(row.TransactionDate)] = struct{}{}
		}
	}

	// Materialize rows for every tuple present in this snapshot. Tuples known
	// only from previous refreshes are not re-emitted; their rows already
	// exist in the warehouse.
	seenLoc := make(map[LocationTuple]struct{})
	seenCust := make(map[CustomerTuple]struct{})
	seenProd := make(map[ProductTuple]struct{})
	for _, row := range rows {
		loc := LocationTupleOf(row)
		if _, ok := seenLoc[loc]; !ok {
			seenLoc[loc] = struct{}{}
			dims.Locations = append(dims.Locations, &warehousemodels.DimLocation{
				LocationKey:     dims.Keys.Locations[loc],
				DeliveryAddress: loc.DeliveryAddress,
				City:            loc.City,
				State:           loc.State,
				ZipCode:         loc.ZipCode,
			})
		}

		cust := CustomerTupleOf(row)
		if _, ok := seenCust[cust]; !ok {
			seenCust[cust] = struct{}{}
			dims.Customers = append(dims.Customers, &warehousemodels.DimCustomer{
				CustomerKey:  dims.Keys.Customers[cust],
				LocationKey:  customerLocation[cust],
				CustomerName: cust.CustomerName,
				Email:        cust.Email,
			})
		}

		prod := ProductTupleOf(row)
		if _, ok := seenProd[prod]; !ok {
			seenProd[prod] = struct{}{}
			price, _ := decimal.NewFromString(prod.Price)
			dims.Products = append(dims.Products, &warehousemodels.DimProduct{
				ProductKey:  dims.Keys.Products[prod],
				ProductID:   prod.ProductID,
				ProductName: prod.ProductName,
				Category:    prod.Category,
				Price:       price,
			})
		}
	}

	for date := range dates {
		dims.Dates = append(dims.Dates, &warehousemodels.DimDate{
			DateKey: date,
			Year:    uint16(date.Year()),
			Month:   uint8(date.Month()),
			Day:     uint8(date.Day()),
		})
	}

	sortDimensions(&dims)
	return dims
}

// LocationTupleOf extracts the canonical location tuple from a silver row.
func LocationTupleOf(row *warehousemodels.SilverSale) LocationTuple {
	return LocationTuple{
		DeliveryAddress: strOrEmpty(row.DeliveryAddress),
		City:            strOrEmpty(row.City),
		State:           strOrEmpty(row.State),
		ZipCode:         strOrEmpty(row.ZipCode),
	}
}

// CustomerTupleOf extracts the canonical customer tuple from a silver row.
func CustomerTupleOf(row *warehousemodels.SilverSale) CustomerTuple {
	return CustomerTuple{
		CustomerName: strOrEmpty(row.CustomerName),
		Email:        strOrEmpty(row.Email),
	}
}

// ProductTupleOf extracts the canonical product tuple from a silver row.
func ProductTupleOf(row *warehousemodels.SilverSale) ProductTuple {
	price := "0.00"
	if row.Price != nil {
		price = row.Price.StringFixed(2)
	}
	return ProductTuple{
		ProductID:   row.ProductID,
		ProductName: strOrEmpty(row.ProductName),
		Category:    strOrEmpty(row.Category),
		Price:       price,
	}
}

func sortDimensions(dims *Dimensions) {
	sort.Slice(dims.Locations, func(i, j int) bool {
		a, b := dims.Locations[i], dims.Locations[j]
		if a.DeliveryAddress != b.DeliveryAddress {
			return a.DeliveryAddress < b.DeliveryAddress
		}
		if a.City != b.City {
			return a.City < b.City
		}
		if a.State != b.State {
			return a.State < b.State
		}
		return a.ZipCode < b.ZipCode
	})
	sort.Slice(dims.Customers, func(i, j int) bool {
		a, b := dims.Customers[i], dims.Customers[j]
		if a.CustomerName != b.CustomerName {
			return a.CustomerName < b.CustomerName
		}
		return a.Email < b.Email
	})
	sort.Slice(dims.Products, func(i, j int) bool {
		a, b := dims.Products[i], dims.Products[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Price.Cmp(b.Price) < 0
	})
	sort.Slice(dims.Dates, func(i, j int) bool { return dims.Dates[i].DateKey.Before(dims.Dates[j].DateKey) })
}
