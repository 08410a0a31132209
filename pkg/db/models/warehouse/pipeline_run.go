package warehouse

import "time"

const PipelineRunsTableName = "pipeline_runs"

// Pipeline run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// PipelineRunsColumns defines the schema for the pipeline_runs table.
var PipelineRunsColumns = []ColumnDef{
	{Name: "run_id", Type: "UUID"},
	{Name: "started_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
	{Name: "finished_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
	{Name: "status", Type: "LowCardinality(String)"},
	{Name: "files_discovered", Type: "UInt32", Codec: "Delta, ZSTD(3)"},
	{Name: "files_ingested", Type: "UInt32", Codec: "Delta, ZSTD(3)"},
	{Name: "files_quarantined", Type: "UInt32", Codec: "Delta, ZSTD(3)"},
	{Name: "rows_ingested", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "rows_accepted", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "rows_rejected", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "facts_written", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "facts_unresolved", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "error", Type: "String", Codec: "ZSTD(1)"},
	{Name: "duration_ms", Type: "Float64"},
	{Name: "detail", Type: "String", Codec: "ZSTD(1)"},
}

// PipelineRun is the audit record for one refresh of the pipeline. The
// accepted/rejected counters are the cleansing audit trail; detail carries a
// JSON breakdown of per-step timings.
type PipelineRun struct {
	RunID            string    `ch:"run_id" json:"run_id"`
	StartedAt        time.Time `ch:"started_at" json:"started_at"`
	FinishedAt       time.Time `ch:"finished_at" json:"finished_at"`
	Status           string    `ch:"status" json:"status"`
	FilesDiscovered  uint32    `ch:"files_discovered" json:"files_discovered"`
	FilesIngested    uint32    `ch:"files_ingested" json:"files_ingested"`
	FilesQuarantined uint32    `ch:"files_quarantined" json:"files_quarantined"`
	RowsIngested     uint64    `ch:"rows_ingested" json:"rows_ingested"`
	RowsAccepted     uint64    `ch:"rows_accepted" json:"rows_accepted"`
	RowsRejected     uint64    `ch:"rows_rejected" json:"rows_rejected"`
	FactsWritten     uint64    `ch:"facts_written" json:"facts_written"`
	FactsUnresolved  uint64    `ch:"facts_unresolved" json:"facts_unresolved"`
	Error            string    `ch:"error" json:"error"`
	DurationMs       float64   `ch:"duration_ms" json:"duration_ms"`
	Detail           string    `ch:"detail" json:"detail"`
}
