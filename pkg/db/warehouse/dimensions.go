package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/xyz-retail/salespipe/pkg/db/clickhouse"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
	"github.com/xyz-retail/salespipe/pkg/transform"
)

// initDimensions creates the four dimension tables. Each is a
// ReplacingMergeTree ordered by its natural-attribute tuple, so re-emitting a
// tuple with its already-assigned surrogate key collapses to a single row.
func (db *DB) initDimensions(ctx context.Context) error {
	tables := []struct {
		name    string
		columns []warehousemodels.ColumnDef
		orderBy string
		version string
	}{
		{warehousemodels.DimLocationTableName, warehousemodels.DimLocationColumns, "(delivery_address, city, state, zip_code)", "location_key"},
		{warehousemodels.DimCustomerTableName, warehousemodels.DimCustomerColumns, "(customer_name, email)", "customer_key"},
		{warehousemodels.DimProductTableName, warehousemodels.DimProductColumns, "(product_id, product_name, category, price)", "product_key"},
		{warehousemodels.DimDateTableName, warehousemodels.DimDateColumns, "(date_key)", "date_key"},
	}

	for _, t := range tables {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s"."%s" (
				%s
			) ENGINE = %s
			ORDER BY %s
		`, db.Name, t.name,
			warehousemodels.ColumnsToSchemaSQL(t.columns),
			clickhouse.ReplacingEngine(t.version), t.orderBy)
		if err := db.Exec(ctx, query); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return nil
}

// InsertDimensions persists one refresh of the dimensional layer.
func (db *DB) InsertDimensions(ctx context.Context, dims transform.Dimensions) error {
	if err := db.insertDimLocations(ctx, dims.Locations); err != nil {
		return err
	}
	if err := db.insertDimCustomers(ctx, dims.Customers); err != nil {
		return err
	}
	if err := db.insertDimProducts(ctx, dims.Products); err != nil {
		return err
	}
	return db.insertDimDates(ctx, dims.Dates)
}

func (db *DB) insertDimLocations(ctx context.Context, rows []*warehousemodels.DimLocation) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.DimLocationTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DimLocationColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, r := range rows {
		if err := batch.Append(r.LocationKey, r.DeliveryAddress, r.City, r.State, r.ZipCode); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (db *DB) insertDimCustomers(ctx context.Context, rows []*warehousemodels.DimCustomer) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.DimCustomerTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DimCustomerColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, r := range rows {
		if err := batch.Append(r.CustomerKey, r.LocationKey, r.CustomerName, r.Email); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (db *DB) insertDimProducts(ctx context.Context, rows []*warehousemodels.DimProduct) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.DimProductTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DimProductColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, r := range rows {
		if err := batch.Append(r.ProductKey, r.ProductID, r.ProductName, r.Category, r.Price); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (db *DB) insertDimDates(ctx context.Context, rows []*warehousemodels.DimDate) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, warehousemodels.DimDateTableName,
		strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DimDateColumns), ", "))
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, r := range rows {
		if err := batch.Append(r.DateKey, r.Year, r.Month, r.Day); err != nil {
			return err
		}
	}
	return batch.Send()
}

// GetKeyAssignments loads every persisted surrogate key, indexed by natural
// tuple. Feeding these into the dimension build is what keeps keys stable
// across refreshes.
func (db *DB) GetKeyAssignments(ctx context.Context) (transform.KeyAssignments, error) {
	keys := transform.NewKeyAssignments()

	locations, err := db.GetDimLocations(ctx)
	if err != nil {
		return keys, err
	}
	for _, l := range locations {
		keys.Locations[transform.LocationTuple{
			DeliveryAddress: l.DeliveryAddress,
			City:            l.City,
			State:           l.State,
			ZipCode:         l.ZipCode,
		}] = l.LocationKey
	}

	customers, err := db.GetDimCustomers(ctx)
	if err != nil {
		return keys, err
	}
	for _, c := range customers {
		keys.Customers[transform.CustomerTuple{
			CustomerName: c.CustomerName,
			Email:        c.Email,
		}] = c.CustomerKey
	}

	products, err := db.GetDimProducts(ctx)
	if err != nil {
		return keys, err
	}
	for _, p := range products {
		keys.Products[transform.ProductTuple{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Category:    p.Category,
			Price:       p.Price.StringFixed(2),
		}] = p.ProductKey
	}

	return keys, nil
}

// GetDimLocations returns the deduped location dimension.
func (db *DB) GetDimLocations(ctx context.Context) ([]*warehousemodels.DimLocation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		ORDER BY delivery_address, city, state, zip_code
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DimLocationColumns), ", "),
		db.Name, warehousemodels.DimLocationTableName)

	var rows []*warehousemodels.DimLocation
	if err := db.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query dim_location: %w", err)
	}
	return rows, nil
}

// GetDimCustomers returns the deduped customer dimension.
func (db *DB) GetDimCustomers(ctx context.Context) ([]*warehousemodels.DimCustomer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		ORDER BY customer_name, email
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DimCustomerColumns), ", "),
		db.Name, warehousemodels.DimCustomerTableName)

	var rows []*warehousemodels.DimCustomer
	if err := db.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query dim_customer: %w", err)
	}
	return rows, nil
}

// GetDimProducts returns the deduped product dimension.
func (db *DB) GetDimProducts(ctx context.Context) ([]*warehousemodels.DimProduct, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		ORDER BY product_id, product_name, category, price
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DimProductColumns), ", "),
		db.Name, warehousemodels.DimProductTableName)

	var rows []*warehousemodels.DimProduct
	if err := db.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query dim_product: %w", err)
	}
	return rows, nil
}

// GetDimDates returns the deduped date dimension.
func (db *DB) GetDimDates(ctx context.Context) ([]*warehousemodels.DimDate, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		ORDER BY date_key
	`, strings.Join(warehousemodels.ColumnsToNameList(warehousemodels.DimDateColumns), ", "),
		db.Name, warehousemodels.DimDateTableName)

	var rows []*warehousemodels.DimDate
	if err := db.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query dim_date: %w", err)
	}
	return rows, nil
}
