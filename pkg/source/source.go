package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CandidateFile is one file found in the landing directory, identified by
// name plus content checksum. The name (relative to the landing dir) is the
// ledger key; the checksum guards against a file being replaced in place with
// different content, which is surfaced as an error rather than re-ingested.
type CandidateFile struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes uint64 `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// Scan lists the ingestable files (*.csv, *.json) directly under dir, sorted
// by name. Subdirectories and files with other extensions are ignored. Each
// candidate is checksummed so callers can diff against the ingest ledger.
func Scan(dir string) ([]CandidateFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir %s: %w", dir, err)
	}

	var out []CandidateFile
	for _, entry := range entries {
		if entry.IsDir() || !Ingestable(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		sum, err := ChecksumFile(path)
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", path, err)
		}

		out = append(out, CandidateFile{
			Name:      entry.Name(),
			Path:      path,
			SizeBytes: uint64(info.Size()),
			Checksum:  sum,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Ingestable reports whether the file name carries a supported extension.
func Ingestable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".json":
		return true
	default:
		return false
	}
}

// ChecksumFile returns the hex-encoded SHA-256 of the file contents.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
