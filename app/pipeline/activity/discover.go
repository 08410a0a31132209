package activity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/pipeline/types"
	"github.com/xyz-retail/salespipe/pkg/source"
)

// DiscoverFiles scans the source directory and diffs it against the ingest
// ledger. A file is a candidate when its name was never recorded or when its
// checksum differs from the recorded one (the file was rewritten in place).
func (c *Context) DiscoverFiles(ctx context.Context, _ types.RefreshInput) (types.DiscoverFilesOutput, error) {
	start := time.Now()

	candidates, err := source.Scan(c.SourceDir)
	if err != nil {
		return types.DiscoverFilesOutput{}, fmt.Errorf("scan source dir %s: %w", c.SourceDir, err)
	}

	ledger, err := c.DB.GetLedgerChecksums(ctx)
	if err != nil {
		return types.DiscoverFilesOutput{}, err
	}

	var fresh []source.CandidateFile
	for _, f := range candidates {
		if checksum, seen := ledger[f.Name]; seen && checksum == f.Checksum {
			continue
		}
		fresh = append(fresh, f)
	}

	c.Logger.Info("Discovered source files",
		zap.Int("scanned", len(candidates)),
		zap.Int("new", len(fresh)))

	return types.DiscoverFilesOutput{
		Files:      fresh,
		Discovered: uint32(len(fresh)),
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}
