package controller

import (
	"net/http"
)

// The dimension tables are small by construction so the dim endpoints return
// the full table without pagination.

func (c *Controller) HandleDimLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := c.App.DB.GetDimLocations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query locations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}

func (c *Controller) HandleDimCustomers(w http.ResponseWriter, r *http.Request) {
	rows, err := c.App.DB.GetDimCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query customers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}

func (c *Controller) HandleDimProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := c.App.DB.GetDimProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}

func (c *Controller) HandleDimDates(w http.ResponseWriter, r *http.Request) {
	rows, err := c.App.DB.GetDimDates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query dates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}
