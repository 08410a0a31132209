package types

import (
	"github.com/xyz-retail/salespipe/pkg/source"
)

// Refresh triggers.
const (
	TriggerWatcher  = "watcher"
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// RefreshInput starts one end-to-end refresh of the warehouse.
type RefreshInput struct {
	RunID   string `json:"runId"`
	Trigger string `json:"trigger"`
}

// DiscoverFilesOutput lists the source files that need ingestion: files whose
// name is absent from the ledger plus files whose checksum changed.
type DiscoverFilesOutput struct {
	Files      []source.CandidateFile `json:"files"`
	Discovered uint32                 `json:"discovered"`
	DurationMs float64                `json:"durationMs"`
}

// IngestFilesInput carries the discovery result into ingestion.
type IngestFilesInput struct {
	Files []source.CandidateFile `json:"files"`
}

// IngestFilesOutput summarizes one ingestion pass over the candidate files.
type IngestFilesOutput struct {
	FilesIngested    uint32  `json:"filesIngested"`
	FilesQuarantined uint32  `json:"filesQuarantined"`
	RowsIngested     uint64  `json:"rowsIngested"`
	DurationMs       float64 `json:"durationMs"`
}

// RefreshSilverOutput carries the cleansing audit counts.
type RefreshSilverOutput struct {
	RowsAccepted uint64  `json:"rowsAccepted"`
	RowsRejected uint64  `json:"rowsRejected"`
	DurationMs   float64 `json:"durationMs"`
}

// RefreshDailySalesOutput reports the rebuilt daily rollup.
type RefreshDailySalesOutput struct {
	Groups     uint64  `json:"groups"`
	DurationMs float64 `json:"durationMs"`
}

// RefreshCustomerMetricsOutput reports the rebuilt customer rollup.
type RefreshCustomerMetricsOutput struct {
	Customers  uint64  `json:"customers"`
	DurationMs float64 `json:"durationMs"`
}

// RefreshDimensionsOutput reports the refreshed dimensional layer.
type RefreshDimensionsOutput struct {
	Locations  uint64  `json:"locations"`
	Customers  uint64  `json:"customers"`
	Products   uint64  `json:"products"`
	Dates      uint64  `json:"dates"`
	NewKeys    uint64  `json:"newKeys"`
	DurationMs float64 `json:"durationMs"`
}

// RefreshFactsOutput reports fact resolution under the configured join policy.
type RefreshFactsOutput struct {
	FactsWritten    uint64  `json:"factsWritten"`
	FactsUnresolved uint64  `json:"factsUnresolved"`
	FactsDropped    uint64  `json:"factsDropped"`
	DurationMs      float64 `json:"durationMs"`
}

// RecordRunInput persists the audit record for one refresh.
type RecordRunInput struct {
	RunID            string  `json:"runId"`
	Status           string  `json:"status"`
	StartedAt        int64   `json:"startedAt"` // unix micros, workflow time
	FilesDiscovered  uint32  `json:"filesDiscovered"`
	FilesIngested    uint32  `json:"filesIngested"`
	FilesQuarantined uint32  `json:"filesQuarantined"`
	RowsIngested     uint64  `json:"rowsIngested"`
	RowsAccepted     uint64  `json:"rowsAccepted"`
	RowsRejected     uint64  `json:"rowsRejected"`
	FactsWritten     uint64  `json:"factsWritten"`
	FactsUnresolved  uint64  `json:"factsUnresolved"`
	Error            string  `json:"error"`
	DurationMs       float64 `json:"durationMs"`
	Detail           string  `json:"detail"`
}
