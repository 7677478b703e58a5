package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpdesk/internal/domain"
	"erpdesk/internal/tax"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal, field string) {
	t.Helper()
	assert.Equal(t, expected, actual.StringFixed(2), field)
}

func TestComputeLine_Basic(t *testing.T) {
	res, err := tax.ComputeLine(d("3"), d("199.99"), d("18"))

	require.NoError(t, err)
	assertMoney(t, "599.97", res.LineTotal, "line_total")
	assertMoney(t, "107.99", res.TaxAmount, "tax_amount")
}

func TestComputeLine_ZeroRate(t *testing.T) {
	res, err := tax.ComputeLine(d("1"), d("2000000"), decimal.Zero)

	require.NoError(t, err)
	assertMoney(t, "2000000.00", res.LineTotal, "line_total")
	assertMoney(t, "0.00", res.TaxAmount, "tax_amount")
}

func TestComputeLine_TaxUsesUnroundedLineTotal(t *testing.T) {
	// 10.005 * 50% = 5.0025 -> 5.00, whereas taxing the rounded 10.01 would give 5.01.
	res, err := tax.ComputeLine(d("1"), d("10.005"), d("50"))

	require.NoError(t, err)
	assertMoney(t, "10.01", res.LineTotal, "line_total")
	assertMoney(t, "5.00", res.TaxAmount, "tax_amount")
}

func TestComputeLine_RoundHalfUp(t *testing.T) {
	res, err := tax.ComputeLine(d("1"), d("0.5"), d("5"))

	require.NoError(t, err)
	assertMoney(t, "0.03", res.TaxAmount, "0.025 rounds up")
}

func TestComputeLine_MatchesRoundedProduct(t *testing.T) {
	cases := []struct{ q, p, r string }{
		{"1", "0", "0"},
		{"2.5", "40.10", "12"},
		{"7", "13.37", "28"},
		{"0.333", "99.99", "5"},
		{"1000", "0.015", "18"},
		{"12", "1234.56", "100"},
	}
	for _, tc := range cases {
		q, p, r := d(tc.q), d(tc.p), d(tc.r)
		res, err := tax.ComputeLine(q, p, r)
		require.NoError(t, err)

		expected := q.Mul(p).Mul(r).Div(decimal.NewFromInt(100)).Round(2)
		assert.True(t, expected.Equal(res.TaxAmount), "q=%s p=%s r=%s: expected %s got %s", tc.q, tc.p, tc.r, expected, res.TaxAmount)
	}
}

func TestComputeLine_NegativeInputs(t *testing.T) {
	_, err := tax.ComputeLine(d("-1"), d("10"), d("5"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = tax.ComputeLine(d("1"), d("-10"), d("5"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = tax.ComputeLine(d("1"), d("10"), d("-5"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestComputeLine_RateAboveHundred(t *testing.T) {
	_, err := tax.ComputeLine(d("1"), d("10"), d("100.01"))

	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)
}

func TestSplitTax_Intrastate(t *testing.T) {
	split, err := tax.SplitTax(d("180.00"), domain.SupplyIntrastate)

	require.NoError(t, err)
	assertMoney(t, "90.00", split.CGST, "cgst")
	assertMoney(t, "90.00", split.SGST, "sgst")
	assertMoney(t, "0.00", split.IGST, "igst")
}

func TestSplitTax_IntrastateOddCent(t *testing.T) {
	split, err := tax.SplitTax(d("0.05"), domain.SupplyIntrastate)

	require.NoError(t, err)
	assertMoney(t, "0.03", split.CGST, "cgst")
	assertMoney(t, "0.02", split.SGST, "sgst")
	assert.True(t, split.CGST.Add(split.SGST).Equal(d("0.05")))
}

func TestSplitTax_InterstateAndExport(t *testing.T) {
	for _, st := range []domain.SupplyType{domain.SupplyInterstate, domain.SupplyExport} {
		split, err := tax.SplitTax(d("42.42"), st)

		require.NoError(t, err)
		assertMoney(t, "0.00", split.CGST, "cgst")
		assertMoney(t, "0.00", split.SGST, "sgst")
		assertMoney(t, "42.42", split.IGST, "igst")
	}
}

func TestSplitTax_UnknownSupplyType(t *testing.T) {
	_, err := tax.SplitTax(d("1"), domain.SupplyType("domestic"))

	assert.ErrorIs(t, err, domain.ErrInvalidSupplyType)
}

func sampleLines() []domain.LineItem {
	return []domain.LineItem{
		{Description: "Laptop", Quantity: d("2"), UnitPrice: d("55000"), TaxRate: d("18")},
		{Description: "Mouse", Quantity: d("3"), UnitPrice: d("499.50"), TaxRate: d("12")},
		{Description: "Books", Quantity: d("5"), UnitPrice: d("120.25"), TaxRate: d("0")},
	}
}

func TestComputeDocumentTotals_Intrastate(t *testing.T) {
	res, err := tax.ComputeDocumentTotals(sampleLines(), d("500"), domain.SupplyIntrastate)
	require.NoError(t, err)

	tot := res.Totals
	assertMoney(t, "112099.75", tot.Subtotal, "subtotal")
	assertMoney(t, "19979.82", tot.TaxTotal, "tax_total")
	assertMoney(t, "0.00", tot.IGSTTotal, "igst_total")
	assert.True(t, tot.CGSTTotal.Add(tot.SGSTTotal).Equal(tot.TaxTotal))
	assertMoney(t, "111599.75", tot.TaxableValue, "taxable_value")
	assertMoney(t, "131579.57", tot.GrandTotal, "grand_total")
	assert.True(t, tot.GrandTotal.Equal(tot.Subtotal.Sub(d("500")).Add(tot.TaxTotal)))
}

func TestComputeDocumentTotals_Interstate(t *testing.T) {
	res, err := tax.ComputeDocumentTotals(sampleLines(), decimal.Zero, domain.SupplyInterstate)
	require.NoError(t, err)

	tot := res.Totals
	assert.True(t, tot.IGSTTotal.Equal(tot.TaxTotal))
	assertMoney(t, "0.00", tot.CGSTTotal, "cgst_total")
	assertMoney(t, "0.00", tot.SGSTTotal, "sgst_total")
}

func TestComputeDocumentTotals_ExpenseSample(t *testing.T) {
	items := []domain.LineItem{
		{Description: "Conference travel", Quantity: d("1"), UnitPrice: d("2000000"), TaxRate: decimal.Zero},
		{Description: "Hotel", Quantity: d("1"), UnitPrice: d("500000"), TaxRate: decimal.Zero},
	}

	res, err := tax.ComputeDocumentTotals(items, decimal.Zero, domain.SupplyIntrastate)
	require.NoError(t, err)

	assertMoney(t, "2500000.00", res.Totals.Subtotal, "subtotal")
	assertMoney(t, "2500000.00", res.Totals.GrandTotal, "grand_total")
}

func TestComputeDocumentTotals_Cess(t *testing.T) {
	items := []domain.LineItem{
		{Description: "Aerated drink", Quantity: d("10"), UnitPrice: d("40"), TaxRate: d("28"), CessRate: d("12")},
	}

	res, err := tax.ComputeDocumentTotals(items, decimal.Zero, domain.SupplyInterstate)
	require.NoError(t, err)

	assertMoney(t, "48.00", res.Totals.CessTotal, "cess_total")
	assertMoney(t, "112.00", res.Totals.TaxTotal, "tax_total")
	assertMoney(t, "560.00", res.Totals.GrandTotal, "grand_total")
	assertMoney(t, "48.00", res.Lines[0].CessAmount, "line cess")
}

func TestComputeDocumentTotals_DoesNotMutateInput(t *testing.T) {
	items := sampleLines()

	_, err := tax.ComputeDocumentTotals(items, decimal.Zero, domain.SupplyIntrastate)
	require.NoError(t, err)

	assert.True(t, items[0].LineTotal.IsZero())
	assert.True(t, items[0].TaxAmount.IsZero())
}

func TestComputeDocumentTotals_Idempotent(t *testing.T) {
	first, err := tax.ComputeDocumentTotals(sampleLines(), d("12.34"), domain.SupplyIntrastate)
	require.NoError(t, err)
	second, err := tax.ComputeDocumentTotals(sampleLines(), d("12.34"), domain.SupplyIntrastate)
	require.NoError(t, err)

	assert.Equal(t, first.Totals.GrandTotal.String(), second.Totals.GrandTotal.String())
	assert.Equal(t, first.Totals.TaxTotal.String(), second.Totals.TaxTotal.String())
	assert.Equal(t, first.Totals.CGSTTotal.String(), second.Totals.CGSTTotal.String())
	for i := range first.Lines {
		assert.Equal(t, first.Lines[i].TaxAmount.String(), second.Lines[i].TaxAmount.String())
	}
}

func TestComputeDocumentTotals_Errors(t *testing.T) {
	_, err := tax.ComputeDocumentTotals(sampleLines(), d("-1"), domain.SupplyIntrastate)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = tax.ComputeDocumentTotals(sampleLines(), d("1000000"), domain.SupplyIntrastate)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	bad := []domain.LineItem{{Quantity: d("1"), UnitPrice: d("1"), TaxRate: d("150")}}
	_, err = tax.ComputeDocumentTotals(bad, decimal.Zero, domain.SupplyIntrastate)
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)

	badCess := []domain.LineItem{{Quantity: d("1"), UnitPrice: d("1"), TaxRate: d("5"), CessRate: d("101")}}
	_, err = tax.ComputeDocumentTotals(badCess, decimal.Zero, domain.SupplyIntrastate)
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)

	_, err = tax.ComputeDocumentTotals(sampleLines(), decimal.Zero, domain.SupplyType(""))
	assert.ErrorIs(t, err, domain.ErrInvalidSupplyType)
}

func TestComputeDocumentTotals_DiscountPrecision(t *testing.T) {
	_, err := tax.ComputeDocumentTotals(sampleLines(), d("0.005"), domain.SupplyIntrastate)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	res, err := tax.ComputeDocumentTotals(sampleLines(), d("10.500"), domain.SupplyIntrastate)
	require.NoError(t, err)
	assertMoney(t, "10.50", res.Totals.Discount, "discount")
	want := res.Totals.Subtotal.Sub(d("10.5")).Add(res.Totals.TaxTotal).Add(res.Totals.CessTotal)
	assert.True(t, want.Equal(res.Totals.GrandTotal), "grand total %s, want %s", res.Totals.GrandTotal, want)
}

func TestComputeDocumentTotals_Empty(t *testing.T) {
	res, err := tax.ComputeDocumentTotals(nil, decimal.Zero, domain.SupplyIntrastate)

	require.NoError(t, err)
	assert.Empty(t, res.Lines)
	assertMoney(t, "0.00", res.Totals.GrandTotal, "grand_total")
}
