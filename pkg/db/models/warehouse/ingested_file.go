package warehouse

import "time"

const IngestLedgerTableName = "ingest_ledger"

// File statuses recorded in the ingest ledger.
const (
	FileStatusIngested    = "ingested"
	FileStatusQuarantined = "quarantined"
)

// IngestLedgerColumns defines the schema for the ingest_ledger table.
// One row per source file ever seen; source_file is the replacing key, so a
// re-recorded file (e.g. after a retried activity) keeps a single entry.
var IngestLedgerColumns = []ColumnDef{
	{Name: "source_file", Type: "String", Codec: "ZSTD(1)"},
	{Name: "checksum", Type: "FixedString(64)"},
	{Name: "size_bytes", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "status", Type: "LowCardinality(String)"},
	{Name: "rows_read", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "rows_loaded", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "rows_malformed", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "error", Type: "String", Codec: "ZSTD(1)"},
	{Name: "ingested_at", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// IngestedFile is the durable record of one processed source file. The ledger
// is the exactly-once boundary for ingestion: a file whose name and checksum
// are already present is never loaded again. If the ledger is lost, duplicate
// ingestion becomes possible; bronze's (source_file, source_seq) replacing key
// is the second line of defense.
type IngestedFile struct {
	SourceFile    string    `ch:"source_file" json:"source_file"`
	Checksum      string    `ch:"checksum" json:"checksum"`
	SizeBytes     uint64    `ch:"size_bytes" json:"size_bytes"`
	Status        string    `ch:"status" json:"status"`
	RowsRead      uint64    `ch:"rows_read" json:"rows_read"`
	RowsLoaded    uint64    `ch:"rows_loaded" json:"rows_loaded"`
	RowsMalformed uint64    `ch:"rows_malformed" json:"rows_malformed"`
	Error         string    `ch:"error" json:"error"`
	IngestedAt    time.Time `ch:"ingested_at" json:"ingested_at"`
}
