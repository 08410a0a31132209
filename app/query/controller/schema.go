package controller

import (
	"net/http"
	"strings"

	"github.com/xyz-retail/salespipe/pkg/db/warehouse"
)

// SchemaResponse represents the response structure for schema introspection
type SchemaResponse struct {
	Table   string             `json:"table"`
	Columns []warehouse.Column `json:"columns"`
}

// validTables maps API table names to warehouse table names. Dashes are
// accepted as route-friendly aliases for underscores.
var validTables = map[string]string{
	"sales_bronze":          "sales_bronze",
	"sales-bronze":          "sales_bronze",
	"sales_silver":          "sales_silver",
	"sales-silver":          "sales_silver",
	"daily_sales_gold":      "daily_sales_gold",
	"daily-sales-gold":      "daily_sales_gold",
	"customer_metrics_gold": "customer_metrics_gold",
	"customer-metrics-gold": "customer_metrics_gold",
	"dim_location":          "dim_location",
	"dim_customer":          "dim_customer",
	"dim_product":           "dim_product",
	"dim_date":              "dim_date",
	"fact_sales":            "fact_sales",
	"ingest_ledger":         "ingest_ledger",
	"pipeline_runs":         "pipeline_runs",
}

// HandleSchema returns the column layout for the specified table.
func (c *Controller) HandleSchema(w http.ResponseWriter, r *http.Request) {
	tableName := r.URL.Query().Get("table")
	if tableName == "" {
		// Without a table parameter return the warehouse inventory.
		writeJSON(w, http.StatusOK, map[string][]string{"tables": {
			"sales_bronze", "sales_silver",
			"daily_sales_gold", "customer_metrics_gold",
			"dim_location", "dim_customer", "dim_product", "dim_date",
			"fact_sales", "ingest_ledger", "pipeline_runs",
		}})
		return
	}

	actualTable, ok := validTables[strings.ToLower(tableName)]
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid table name")
		return
	}

	columns, err := c.App.DB.DescribeTable(r.Context(), actualTable)
	if err != nil {
		if strings.Contains(err.Error(), "doesn't exist") {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to describe table")
		return
	}

	writeJSON(w, http.StatusOK, SchemaResponse{
		Table:   actualTable,
		Columns: columns,
	})
}
