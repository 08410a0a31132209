package source

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// decodeJSON reads either a top-level array of objects or a stream of
// newline-delimited objects into bronze rows. Framing errors (invalid JSON)
// fail the file; an object whose typed field cannot be converted is counted
// malformed and skipped.
func decodeJSON(r io.Reader, sourceFile string, ingestedAt time.Time) ([]*warehousemodels.BronzeSale, DecodeReport, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	// Peek at the first token to distinguish `[{...},...]` from `{...}\n{...}`.
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, DecodeReport{}, fmt.Errorf("empty json file")
		}
		return nil, DecodeReport{}, fmt.Errorf("read json: %w", err)
	}

	var (
		rows   []*warehousemodels.BronzeSale
		report DecodeReport
		seq    uint32
	)

	decodeObject := func(obj map[string]any) {
		report.RowsRead++
		seq++

		row := &warehousemodels.BronzeSale{
			SourceFile: sourceFile,
			SourceSeq:  seq,
			IngestedAt: ingestedAt,
		}
		for name, value := range obj {
			str, ok := jsonValueString(value)
			if !ok {
				continue // null or nested value: leave the column NULL
			}
			if err := setSaleField(row, name, str); err != nil {
				report.RowsMalformed++
				return
			}
		}

		report.RowsDecoded++
		rows = append(rows, row)
	}

	if delim, ok := tok.(json.Delim); ok && delim == '[' {
		for dec.More() {
			var obj map[string]any
			if err := dec.Decode(&obj); err != nil {
				return nil, report, fmt.Errorf("decode json record: %w", err)
			}
			decodeObject(obj)
		}
		return rows, report, nil
	}

	// Newline-delimited objects: the first token was the opening brace of the
	// first object, so re-decode from scratch object by object.
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, DecodeReport{}, fmt.Errorf("unexpected json document: want array or object stream")
	}

	var first map[string]any
	if err := decodeObjectBody(dec, &first); err != nil {
		return nil, report, fmt.Errorf("decode json record: %w", err)
	}
	decodeObject(first)

	for {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			if err == io.EOF {
				break
			}
			return nil, report, fmt.Errorf("decode json record: %w", err)
		}
		decodeObject(obj)
	}

	return rows, report, nil
}

// decodeObjectBody reads the key/value pairs of an object whose opening brace
// has already been consumed by the decoder.
func decodeObjectBody(dec *json.Decoder, dst *map[string]any) error {
	obj := make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key token %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		obj[key] = value
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	*dst = obj
	return nil
}

// jsonValueString renders a scalar JSON value as the string form consumed by
// setSaleField. Nulls and nested structures report false.
func jsonValueString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
