package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestScan_FiltersAndSorts verifies only csv/json files are listed, sorted by
// name, with size and checksum populated.
func TestScan_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sales_2.json", `[]`)
	writeFile(t, dir, "sales_1.csv", "transaction_id\n")
	writeFile(t, dir, "notes.txt", "ignore me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	files, err := Scan(dir)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "sales_1.csv", files[0].Name)
	assert.Equal(t, "sales_2.json", files[1].Name)
	assert.Equal(t, uint64(15), files[0].SizeBytes)
	assert.Len(t, files[0].Checksum, 64)
}

// TestScan_ChecksumTracksContent verifies the checksum changes when a file is
// replaced in place.
func TestScan_ChecksumTracksContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sales_1.csv", "transaction_id\ntx-1\n")

	before, err := ChecksumFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("transaction_id\ntx-2\n"), 0o644))

	after, err := ChecksumFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

// TestScan_MissingDir verifies a missing landing dir is an error, not an
// empty listing.
func TestScan_MissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

// TestIngestable covers the extension whitelist.
func TestIngestable(t *testing.T) {
	assert.True(t, Ingestable("sales_1.csv"))
	assert.True(t, Ingestable("SALES_1.JSON"))
	assert.False(t, Ingestable("sales_1.parquet"))
	assert.False(t, Ingestable("sales_1"))
}
