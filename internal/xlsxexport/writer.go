// Package xlsxexport renders the document register as an Excel workbook.
package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"erpdesk/internal/csvexport"
	"erpdesk/internal/domain"
)

// SheetName is the name of the register worksheet.
const SheetName = "Register"

// amountColumns are the zero-based register columns written as numbers.
var amountColumns = map[int]func(t domain.Totals) float64{
	10: func(t domain.Totals) float64 { return t.Subtotal.InexactFloat64() },
	11: func(t domain.Totals) float64 { return t.Discount.InexactFloat64() },
	12: func(t domain.Totals) float64 { return t.TaxableValue.InexactFloat64() },
	13: func(t domain.Totals) float64 { return t.CGSTTotal.InexactFloat64() },
	14: func(t domain.Totals) float64 { return t.SGSTTotal.InexactFloat64() },
	15: func(t domain.Totals) float64 { return t.IGSTTotal.InexactFloat64() },
	16: func(t domain.Totals) float64 { return t.CessTotal.InexactFloat64() },
	17: func(t domain.Totals) float64 { return t.GrandTotal.InexactFloat64() },
}

// Write streams docs into a single-sheet workbook and writes it to w.
func Write(w io.Writer, docs []domain.Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("opening stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("creating amount style: %w", err)
	}

	header := make([]interface{}, len(csvexport.Columns))
	for i, c := range csvexport.Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range docs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(&docs[i], money)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func row(doc *domain.Document, moneyStyle int) []interface{} {
	text := csvexport.Row(doc)
	out := make([]interface{}, len(text))
	for i, v := range text {
		if amount, ok := amountColumns[i]; ok {
			out[i] = excelize.Cell{StyleID: moneyStyle, Value: amount(doc.Totals)}
			continue
		}
		out[i] = v
	}
	out[4] = doc.Version
	out[18] = len(doc.LineItems)
	return out
}
