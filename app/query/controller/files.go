package controller

import (
	"net/http"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// HandleFiles returns the ingest ledger, newest first.
func (c *Controller) HandleFiles(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	files, err := c.App.DB.GetIngestedFiles(r.Context(), spec.Limit, spec.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query ingest ledger")
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse[*warehousemodels.IngestedFile]{
		Data:   files,
		Limit:  spec.Limit,
		Offset: spec.Offset,
	})
}
