package activity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/pipeline/types"
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
	"github.com/xyz-retail/salespipe/pkg/source"
)

// IngestFiles decodes and loads every candidate file into the bronze layer,
// one ledger entry per file. Files are processed in parallel; a file that
// fails to decode is quarantined (recorded in the ledger with its error, no
// bronze rows) and never blocks the rest of the batch. A database failure
// aborts the activity so Temporal retries the whole batch; the replacing key
// on bronze and the ledger make the retry idempotent.
func (c *Context) IngestFiles(ctx context.Context, in types.IngestFilesInput) (types.IngestFilesOutput, error) {
	start := time.Now()

	var (
		mu  sync.Mutex
		out types.IngestFilesOutput
	)

	pool := c.ingestWorkerPool()
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, f := range in.Files {
		file := f
		group.SubmitErr(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			rowsLoaded, report, err := c.ingestFile(groupCtx, file)

			mu.Lock()
			defer mu.Unlock()
			out.RowsIngested += rowsLoaded
			if err != nil {
				return err
			}
			if report.quarantined {
				out.FilesQuarantined++
			} else {
				out.FilesIngested++
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return types.IngestFilesOutput{}, err
	}

	c.Logger.Info("Ingested source files",
		zap.Uint32("ingested", out.FilesIngested),
		zap.Uint32("quarantined", out.FilesQuarantined),
		zap.Uint64("rows", out.RowsIngested))

	out.DurationMs = float64(time.Since(start).Microseconds()) / 1000.0
	return out, nil
}

type ingestResult struct {
	quarantined bool
}

// ingestFile loads one file: decode, bronze insert, ledger entry. Decode
// failures quarantine the file; storage failures propagate.
func (c *Context) ingestFile(ctx context.Context, file source.CandidateFile) (uint64, ingestResult, error) {
	ingestedAt := time.Now().UTC()

	rows, report, decodeErr := source.DecodeFile(file.Path, file.Name, ingestedAt)
	if decodeErr != nil {
		c.Logger.Warn("Quarantining source file",
			zap.String("file", file.Name),
			zap.Error(decodeErr))

		entry := &warehousemodels.IngestedFile{
			SourceFile: file.Name,
			Checksum:   file.Checksum,
			SizeBytes:  file.SizeBytes,
			Status:     warehousemodels.FileStatusQuarantined,
			RowsRead:   report.RowsRead,
			Error:      decodeErr.Error(),
			IngestedAt: ingestedAt,
		}
		if err := c.DB.RecordIngestedFile(ctx, entry); err != nil {
			return 0, ingestResult{}, err
		}
		return 0, ingestResult{quarantined: true}, nil
	}

	if err := c.DB.InsertBronze(ctx, rows); err != nil {
		return 0, ingestResult{}, err
	}

	entry := &warehousemodels.IngestedFile{
		SourceFile:    file.Name,
		Checksum:      file.Checksum,
		SizeBytes:     file.SizeBytes,
		Status:        warehousemodels.FileStatusIngested,
		RowsRead:      report.RowsRead,
		RowsLoaded:    report.RowsDecoded,
		RowsMalformed: report.RowsMalformed,
		IngestedAt:    ingestedAt,
	}
	if err := c.DB.RecordIngestedFile(ctx, entry); err != nil {
		return 0, ingestResult{}, err
	}

	return report.RowsDecoded, ingestResult{}, nil
}
