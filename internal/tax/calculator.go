// Package tax computes GST line and document totals. Every function is pure:
// identical inputs always produce identical outputs.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"erpdesk/internal/domain"
)

// MoneyPlaces is the number of decimal places in the currency's minor unit.
const MoneyPlaces = 2

var maxRate = decimal.NewFromInt(100)

// LineResult holds the computed amounts for one line item.
type LineResult struct {
	LineTotal decimal.Decimal
	TaxAmount decimal.Decimal
}

// Split is a tax amount divided between central, state and integrated GST.
type Split struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

// Result is the output of ComputeDocumentTotals.
type Result struct {
	Lines  []domain.LineItem `json:"line_items"`
	Totals domain.Totals     `json:"totals"`
}

// Round rounds half-up to the minor unit. Amounts are never negative here,
// so decimal's half-away-from-zero rounding is half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// percentOf returns base * rate / 100 without intermediate rounding.
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Shift(-2)
}

func checkRate(rate decimal.Decimal, field string) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidAmount, field)
	}
	if rate.GreaterThan(maxRate) {
		return fmt.Errorf("%w: %s %s is outside 0-100", domain.ErrInvalidTaxRate, field, rate)
	}
	return nil
}

// ComputeLine returns lineTotal = quantity*unitPrice and
// taxAmount = quantity*unitPrice*rate/100, each rounded to the minor unit.
// The tax is computed from the unrounded line total.
func ComputeLine(quantity, unitPrice, taxRatePercent decimal.Decimal) (LineResult, error) {
	if quantity.IsNegative() {
		return LineResult{}, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidAmount)
	}
	if unitPrice.IsNegative() {
		return LineResult{}, fmt.Errorf("%w: unit price must not be negative", domain.ErrInvalidAmount)
	}
	if err := checkRate(taxRatePercent, "tax rate"); err != nil {
		return LineResult{}, err
	}

	gross := quantity.Mul(unitPrice)
	return LineResult{
		LineTotal: Round(gross),
		TaxAmount: Round(percentOf(gross, taxRatePercent)),
	}, nil
}

// SplitTax divides a tax amount by supply type. Intrastate supplies split the
// tax evenly between CGST and SGST; an odd cent goes to CGST so that the two
// halves always add back up to taxAmount. Interstate and export supplies are
// charged entirely as IGST.
func SplitTax(taxAmount decimal.Decimal, supplyType domain.SupplyType) (Split, error) {
	if taxAmount.IsNegative() {
		return Split{}, fmt.Errorf("%w: tax amount must not be negative", domain.ErrInvalidAmount)
	}
	switch supplyType {
	case domain.SupplyIntrastate:
		cgst := Round(taxAmount.Div(decimal.NewFromInt(2)))
		return Split{
			CGST: cgst,
			SGST: taxAmount.Sub(cgst),
			IGST: decimal.Zero,
		}, nil
	case domain.SupplyInterstate, domain.SupplyExport:
		return Split{CGST: decimal.Zero, SGST: decimal.Zero, IGST: taxAmount}, nil
	default:
		return Split{}, fmt.Errorf("%w: %q", domain.ErrInvalidSupplyType, supplyType)
	}
}

// ComputeDocumentTotals computes every line and sums the rounded line values.
//
//	grandTotal = subtotal - discount + taxTotal + cessTotal
//
// Cess is charged on the line total at the line's cess rate and is never split.
// The returned lines are copies; the input slice is not modified.
func ComputeDocumentTotals(items []domain.LineItem, discount decimal.Decimal, supplyType domain.SupplyType) (*Result, error) {
	if !domain.ValidSupplyTypes[supplyType] {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSupplyType, supplyType)
	}
	if discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount must not be negative", domain.ErrInvalidAmount)
	}
	if !discount.Equal(Round(discount)) {
		return nil, fmt.Errorf("%w: discount %s has more than %d decimal places", domain.ErrInvalidAmount, discount, MoneyPlaces)
	}

	lines := make([]domain.LineItem, len(items))
	totals := domain.Totals{
		Subtotal:  decimal.Zero,
		TaxTotal:  decimal.Zero,
		CGSTTotal: decimal.Zero,
		SGSTTotal: decimal.Zero,
		IGSTTotal: decimal.Zero,
		CessTotal: decimal.Zero,
	}

	for i := range items {
		line := items[i]
		res, err := ComputeLine(line.Quantity, line.UnitPrice, line.TaxRate)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if err := checkRate(line.CessRate, "cess rate"); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		split, err := SplitTax(res.TaxAmount, supplyType)
		if err != nil {
			return nil, err
		}

		line.LineTotal = res.LineTotal
		line.TaxAmount = res.TaxAmount
		line.CessAmount = Round(percentOf(line.Quantity.Mul(line.UnitPrice), line.CessRate))
		line.CGST = split.CGST
		line.SGST = split.SGST
		line.IGST = split.IGST
		lines[i] = line

		totals.Subtotal = totals.Subtotal.Add(line.LineTotal)
		totals.TaxTotal = totals.TaxTotal.Add(line.TaxAmount)
		totals.CGSTTotal = totals.CGSTTotal.Add(line.CGST)
		totals.SGSTTotal = totals.SGSTTotal.Add(line.SGST)
		totals.IGSTTotal = totals.IGSTTotal.Add(line.IGST)
		totals.CessTotal = totals.CessTotal.Add(line.CessAmount)
	}

	if discount.GreaterThan(totals.Subtotal) {
		return nil, fmt.Errorf("%w: discount %s exceeds subtotal %s", domain.ErrInvalidAmount, discount, totals.Subtotal)
	}

	totals.Discount = discount
	totals.TaxableValue = totals.Subtotal.Sub(discount)
	totals.GrandTotal = totals.TaxableValue.Add(totals.TaxTotal).Add(totals.CessTotal)

	return &Result{Lines: lines, Totals: totals}, nil
}
