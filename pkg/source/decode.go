package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// DecodeReport accounts for the rows of one decoded file.
type DecodeReport struct {
	RowsRead      uint64 `json:"rows_read"`
	RowsDecoded   uint64 `json:"rows_decoded"`
	RowsMalformed uint64 `json:"rows_malformed"`
}

// DecodeFile parses one landing file into bronze rows, dispatching on the
// file extension. A row that cannot be decoded (wrong column count, bad
// number, bad date) is counted as malformed and skipped; a file-level failure
// (unreadable, missing header, broken JSON framing) returns an error and the
// caller quarantines the whole file. Values arrive untransformed: empty CSV
// cells and missing JSON fields become NULLs.
func DecodeFile(path, sourceFile string, ingestedAt time.Time) ([]*warehousemodels.BronzeSale, DecodeReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, DecodeReport{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return decodeCSV(f, sourceFile, ingestedAt)
	case ".json":
		return decodeJSON(f, sourceFile, ingestedAt)
	default:
		return nil, DecodeReport{}, fmt.Errorf("unsupported file type: %s", path)
	}
}

// transactionDateLayouts are tried in order when parsing transaction_date.
var transactionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// setSaleField assigns one named, string-typed source value to its bronze
// column. Empty values stay NULL. Unknown names are ignored so source files
// may carry extra columns.
func setSaleField(row *warehousemodels.BronzeSale, name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	switch strings.ToLower(name) {
	case "transaction_id":
		row.TransactionID = &value
	case "product_id":
		row.ProductID = &value
	case "product_name":
		row.ProductName = &value
	case "customer_name":
		row.CustomerName = &value
	case "email":
		row.Email = &value
	case "delivery_address":
		row.DeliveryAddress = &value
	case "city":
		row.City = &value
	case "state":
		row.State = &value
	case "zip_code":
		row.ZipCode = &value
	case "category":
		row.Category = &value
	case "payment_method":
		row.PaymentMethod = &value
	case "quantity":
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return fmt.Errorf("quantity %q: %w", value, err)
		}
		q := int32(n)
		row.Quantity = &q
	case "price":
		return setDecimalField(&row.Price, "price", value)
	case "discount":
		return setDecimalField(&row.Discount, "discount", value)
	case "total_amount":
		return setDecimalField(&row.TotalAmount, "total_amount", value)
	case "transaction_date":
		ts, err := parseTransactionDate(value)
		if err != nil {
			return err
		}
		row.TransactionDate = &ts
	}
	return nil
}

func setDecimalField(dst **decimal.Decimal, name, value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("%s %q: %w", name, value, err)
	}
	*dst = &d
	return nil
}

func parseTransactionDate(value string) (time.Time, error) {
	for _, layout := range transactionDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("transaction_date %q: unrecognized format", value)
}
