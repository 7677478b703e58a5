// Package csvexport renders the document register as CSV.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"erpdesk/internal/domain"
	"erpdesk/internal/gst"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the register header row.
var Columns = []string{
	"Code",
	"Kind",
	"Title",
	"Status",
	"Version",
	"Supply Type",
	"Seller GSTIN",
	"Buyer GSTIN",
	"Place of Supply",
	"Currency",
	"Subtotal",
	"Discount",
	"Taxable Value",
	"CGST",
	"SGST",
	"IGST",
	"Cess",
	"Grand Total",
	"Line Item Count",
	"IRN",
	"E-Way Bill Number",
	"Valid Until",
	"Created At",
	"Updated At",
}

// Writer wraps csv.Writer for exporting documents as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteDocuments converts a batch of documents to CSV rows and writes them.
func (w *Writer) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		if err := w.csv.Write(Row(&docs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Row converts a single document to one register row, aligned with Columns.
func Row(doc *domain.Document) []string {
	t := doc.Totals
	return []string{
		doc.Code,
		string(doc.Kind),
		doc.Title,
		string(doc.Status),
		strconv.FormatInt(doc.Version, 10),
		string(doc.SupplyType),
		doc.SellerGSTIN,
		doc.BuyerGSTIN,
		placeOfSupply(doc.PlaceOfSupply),
		doc.Currency,
		t.Subtotal.StringFixed(2),
		t.Discount.StringFixed(2),
		t.TaxableValue.StringFixed(2),
		t.CGSTTotal.StringFixed(2),
		t.SGSTTotal.StringFixed(2),
		t.IGSTTotal.StringFixed(2),
		t.CessTotal.StringFixed(2),
		t.GrandTotal.StringFixed(2),
		strconv.Itoa(len(doc.LineItems)),
		doc.IRN,
		doc.EWayBillNumber,
		formatTime(doc.ValidUntil),
		doc.CreatedAt.Format(time.RFC3339),
		doc.UpdatedAt.Format(time.RFC3339),
	}
}

// placeOfSupply renders "29-Karnataka" for known state codes.
func placeOfSupply(code string) string {
	if name := gst.StateName(code); name != "" {
		return code + "-" + name
	}
	return code
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition or an
// object key. Truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), at.Format("2006-01-02"), ext)
}
