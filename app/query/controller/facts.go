package controller

import (
	"net/http"
	"time"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// HandleFacts returns fact rows, optionally restricted by a date window or
// to facts that could not be joined to every dimension.
func (c *Controller) HandleFacts(w http.ResponseWriter, r *http.Request) {
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
	unresolvedOnly := r.URL.Query().Get("unresolved") == "true"

	rows, err := c.App.DB.GetFacts(r.Context(), unresolvedOnly, from, to, spec.Limit, spec.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query facts")
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse[*warehousemodels.FactSale]{
		Data:   rows,
		Limit:  spec.Limit,
		Offset: spec.Offset,
	})
}
