package controller

import (
	"net/http"

	"github.com/gorilla/mux"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// HandleRuns returns the run history, newest first.
func (c *Controller) HandleRuns(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := c.App.DB.GetPipelineRuns(r.Context(), spec.Limit, spec.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query runs")
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse[*warehousemodels.PipelineRun]{
		Data:   runs,
		Limit:  spec.Limit,
		Offset: spec.Offset,
	})
}

// HandleLatestRun returns the most recent run.
func (c *Controller) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	runs, err := c.App.DB.GetPipelineRuns(r.Context(), 1, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query runs")
		return
	}
	if len(runs) == 0 {
		writeError(w, http.StatusNotFound, "no runs recorded")
		return
	}

	writeJSON(w, http.StatusOK, runs[0])
}

// HandleRunByID returns a single run by its run id.
func (c *Controller) HandleRunByID(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	if runID == "" {
		writeError(w, http.StatusBadRequest, "missing run id")
		return
	}

	run, err := c.App.DB.GetPipelineRun(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, http.StatusOK, run)
}
