package source

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIngestedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// TestDecodeFile_CSV walks a small headered CSV through the decoder.
func TestDecodeFile_CSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.csv",
		"transaction_id,product_id,customer_name,quantity,price,total_amount,transaction_date\n"+
			"tx-1,p-1,Ada Lovelace,2,25.00,50.00,2024-01-01 10:30:00\n"+
			"tx-2,p-2,,1,10.00,10.00,2024-01-01\n")

	rows, report, err := DecodeFile(path, "sales_1.csv", testIngestedAt)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), report.RowsRead)
	assert.Equal(t, uint64(2), report.RowsDecoded)
	assert.Equal(t, uint64(0), report.RowsMalformed)
	require.Len(t, rows, 2)

	first := rows[0]
	require.NotNil(t, first.TransactionID)
	assert.Equal(t, "tx-1", *first.TransactionID)
	require.NotNil(t, first.Quantity)
	assert.Equal(t, int32(2), *first.Quantity)
	require.NotNil(t, first.Price)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("25.00")))
	require.NotNil(t, first.TransactionDate)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), *first.TransactionDate)
	assert.Equal(t, "sales_1.csv", first.SourceFile)
	assert.Equal(t, uint32(1), first.SourceSeq)
	assert.Equal(t, testIngestedAt, first.IngestedAt)

	// Empty cells stay NULL.
	assert.Nil(t, rows[1].CustomerName)
	assert.Equal(t, uint32(2), rows[1].SourceSeq)
}

// TestDecodeFile_CSVMalformedRows verifies bad typed values cost one row, not
// the file, and that sequence numbers still advance past them.
func TestDecodeFile_CSVMalformedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.csv",
		"transaction_id,quantity\n"+
			"tx-1,not-a-number\n"+
			"tx-2,3,extra-column\n"+
			"tx-3,4\n")

	rows, report, err := DecodeFile(path, "sales_1.csv", testIngestedAt)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), report.RowsRead)
	assert.Equal(t, uint64(1), report.RowsDecoded)
	assert.Equal(t, uint64(2), report.RowsMalformed)
	require.Len(t, rows, 1)
	assert.Equal(t, "tx-3", *rows[0].TransactionID)
	assert.Equal(t, uint32(3), rows[0].SourceSeq)
}

// TestDecodeFile_CSVEmpty verifies a file without a header fails as a whole.
func TestDecodeFile_CSVEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.csv", "")

	_, _, err := DecodeFile(path, "sales_1.csv", testIngestedAt)
	assert.Error(t, err)
}

// TestDecodeFile_CSVUnknownColumns verifies extra columns are carried without
// error and simply ignored.
func TestDecodeFile_CSVUnknownColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.csv",
		"transaction_id,loyalty_tier\n"+
			"tx-1,gold\n")

	rows, report, err := DecodeFile(path, "sales_1.csv", testIngestedAt)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), report.RowsDecoded)
	require.Len(t, rows, 1)
	assert.Equal(t, "tx-1", *rows[0].TransactionID)
}

// TestDecodeFile_JSONArray walks a top-level array through the decoder,
// including JSON-native numbers.
func TestDecodeFile_JSONArray(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.json",
		`[{"transaction_id":"tx-1","product_id":"p-1","quantity":2,"price":25.5,"transaction_date":"2024-01-01T10:30:00Z"},`+
			`{"transaction_id":"tx-2","customer_name":null}]`)

	rows, report, err := DecodeFile(path, "sales_1.json", testIngestedAt)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), report.RowsDecoded)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Quantity)
	assert.Equal(t, int32(2), *rows[0].Quantity)
	require.NotNil(t, rows[0].Price)
	assert.True(t, rows[0].Price.Equal(decimal.RequireFromString("25.5")))
	assert.Nil(t, rows[1].CustomerName)
}

// TestDecodeFile_JSONLines verifies newline-delimited objects decode with
// sequence numbers in stream order.
func TestDecodeFile_JSONLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.json",
		`{"transaction_id":"tx-1"}`+"\n"+
			`{"transaction_id":"tx-2"}`+"\n")

	rows, report, err := DecodeFile(path, "sales_1.json", testIngestedAt)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), report.RowsDecoded)
	require.Len(t, rows, 2)
	assert.Equal(t, uint32(1), rows[0].SourceSeq)
	assert.Equal(t, uint32(2), rows[1].SourceSeq)
}

// TestDecodeFile_JSONBroken verifies a framing error fails the whole file.
func TestDecodeFile_JSONBroken(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.json", `[{"transaction_id":"tx-1"},{"transac`)

	_, _, err := DecodeFile(path, "sales_1.json", testIngestedAt)
	assert.Error(t, err)
}

// TestDecodeFile_UnsupportedExtension verifies the extension dispatch.
func TestDecodeFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.parquet", "binary")

	_, _, err := DecodeFile(path, "sales_1.parquet", testIngestedAt)
	assert.Error(t, err)
}

// TestParseTransactionDate covers the accepted layouts.
func TestParseTransactionDate(t *testing.T) {
	for _, value := range []string{
		"2024-01-01T10:30:00Z",
		"2024-01-01 10:30:00",
		"2024-01-01T10:30:00",
		"2024-01-01",
	} {
		ts, err := parseTransactionDate(value)
		require.NoError(t, err, value)
		assert.Equal(t, 2024, ts.Year())
	}

	_, err := parseTransactionDate("01/02/2024")
	assert.Error(t, err)
}
