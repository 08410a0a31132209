package controller

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

const dateParamLayout = "2006-01-02"

// HandleDailySales returns the daily revenue rollup, optionally filtered by
// a date window and a category.
func (c *Controller) HandleDailySales(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = time.Parse(dateParamLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be formatted as YYYY-MM-DD")
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err = time.Parse(dateParamLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be formatted as YYYY-MM-DD")
			return
		}
	}
	category := r.URL.Query().Get("category")

	rows, err := c.App.DB.GetDailySales(r.Context(), from, to, category, spec.Limit, spec.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query daily sales")
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse[*warehousemodels.DailySales]{
		Data:   rows,
		Limit:  spec.Limit,
		Offset: spec.Offset,
	})
}

// HandleCustomers returns the per-customer lifetime rollup ordered by spend.
func (c *Controller) HandleCustomers(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := c.App.DB.GetCustomerMetrics(r.Context(), spec.Limit, spec.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query customer metrics")
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse[*warehousemodels.CustomerMetrics]{
		Data:   rows,
		Limit:  spec.Limit,
		Offset: spec.Offset,
	})
}

// HandleCustomerByName returns the rollup for a single customer.
func (c *Controller) HandleCustomerByName(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing customer name")
		return
	}

	row, err := c.App.DB.GetCustomerMetricsByName(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query customer metrics")
		return
	}
	if row == nil {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}

	writeJSON(w, http.StatusOK, row)
}
