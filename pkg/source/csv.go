package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// decodeCSV reads a headered CSV stream into bronze rows. Columns are mapped
// by header name, so column order is irrelevant. Records with a mismatched
// field count or an unparsable typed value are counted malformed and skipped.
func decodeCSV(r io.Reader, sourceFile string, ingestedAt time.Time) ([]*warehousemodels.BronzeSale, DecodeReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row length validated against the header below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, DecodeReport{}, fmt.Errorf("empty csv file")
		}
		return nil, DecodeReport{}, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var (
		rows   []*warehousemodels.BronzeSale
		report DecodeReport
		seq    uint32
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.Reader recovers at the next record, so a broken record
			// costs one row instead of the whole file.
			report.RowsRead++
			report.RowsMalformed++
			continue
		}

		report.RowsRead++
		seq++
		if len(record) != len(header) {
			report.RowsMalformed++
			continue
		}

		row := &warehousemodels.BronzeSale{
			SourceFile: sourceFile,
			SourceSeq:  seq,
			IngestedAt: ingestedAt,
		}
		malformed := false
		for i, name := range header {
			if err := setSaleField(row, name, record[i]); err != nil {
				malformed = true
				break
			}
		}
		if malformed {
			report.RowsMalformed++
			continue
		}

		report.RowsDecoded++
		rows = append(rows, row)
	}

	return rows, report, nil
}
