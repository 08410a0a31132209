package transform

import (
	warehousemodels "github.com/xyz-retail/salespipe/pkg/db/models/warehouse"
)

// CleanseReport carries the audit counters for one cleansing pass.
type CleanseReport struct {
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
}

// Total returns the number of bronze rows examined.
func (r CleanseReport) Total() uint64 {
	return r.Accepted + r.Rejected
}

// Cleanse filters bronze rows down to the silver layer. A row is accepted iff
// both transaction_id and product_id are non-null; everything else passes
// through unchanged, including the source lineage columns. The function is
// pure: re-running it over the same bronze snapshot yields the same silver
// rows and the same counters.
func Cleanse(rows []*warehousemodels.BronzeSale) ([]*warehousemodels.SilverSale, CleanseReport) {
	out := make([]*warehousemodels.SilverSale, 0, len(rows))
	var report CleanseReport

	for _, row := range rows {
		if row.TransactionID == nil || row.ProductID == nil {
			report.Rejected++
			continue
		}
		report.Accepted++
		out = append(out, &warehousemodels.SilverSale{
			TransactionID:   *row.TransactionID,
			ProductID:       *row.ProductID,
			ProductName:     row.ProductName,
			CustomerName:    row.CustomerName,
			Email:           row.Email,
			DeliveryAddress: row.DeliveryAddress,
			City:            row.City,
			State:           row.State,
			ZipCode:         row.ZipCode,
			Category:        row.Category,
			Quantity:        row.Quantity,
			Price:           row.Price,
			Discount:        row.Discount,
			TotalAmount:     row.TotalAmount,
			PaymentMethod:   row.PaymentMethod,
			TransactionDate: row.TransactionDate,
			SourceFile:      row.SourceFile,
			SourceSeq:       row.SourceSeq,
			IngestedAt:      row.IngestedAt,
		})
	}

	return out, report
}
