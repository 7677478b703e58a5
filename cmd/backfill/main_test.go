package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"erpdesk/internal/domain"
	"erpdesk/internal/tax"
	"erpdesk/mocks"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// driftedDoc returns an intrastate expense whose stored grand total is
// missing the 18 of tax on its single line.
func driftedDoc(status domain.DocumentStatus) *domain.Document {
	return &domain.Document{
		ID:         uuid.New(),
		TenantID:   uuid.New(),
		Kind:       domain.KindExpense,
		Code:       "EXP-2025-007",
		Status:     status,
		Version:    4,
		SupplyType: domain.SupplyIntrastate,
		Discount:   decimal.Zero,
		LineItems: domain.LineItems{
			{Description: "Hotel", Quantity: dec("1"), UnitPrice: dec("100"), TaxRate: dec("18")},
		},
		Totals: domain.Totals{Subtotal: dec("100"), TaxableValue: dec("100"), GrandTotal: dec("100")},
	}
}

func TestReconcile_CleanDocument(t *testing.T) {
	docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
	doc := driftedDoc(domain.StatusDraft)
	res, err := tax.ComputeDocumentTotals(doc.LineItems, doc.Discount, doc.SupplyType)
	require.NoError(t, err)
	doc.Totals = res.Totals

	out, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc, options{apply: true})

	require.NoError(t, err)
	assert.Equal(t, outcomeClean, out)
	docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_ReportOnly(t *testing.T) {
	docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
	doc := driftedDoc(domain.StatusDraft)

	out, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc, options{})

	require.NoError(t, err)
	assert.Equal(t, outcomeDrift, out)
	assert.Equal(t, int64(4), doc.Version)
	docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_ApplyWritesVersionAndAudit(t *testing.T) {
	docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
	doc := driftedDoc(domain.StatusSubmitted)

	docs.On("Update", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.ID == doc.ID && d.Version == 5 && d.Totals.GrandTotal.Equal(dec("118")) &&
			d.Totals.CGSTTotal.Equal(dec("9")) && d.Totals.SGSTTotal.Equal(dec("9"))
	}), int64(4)).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.DocumentAuditEntry) bool {
		return e.DocumentID == doc.ID && e.TenantID == doc.TenantID && e.UserID == nil &&
			e.Action == string(domain.AuditDocumentTotalsRecomputed)
	})).Return(nil)

	out, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc, options{apply: true})

	require.NoError(t, err)
	assert.Equal(t, outcomeFixed, out)
	assert.Equal(t, int64(5), doc.Version)
	assert.Equal(t, "118.00", doc.Totals.GrandTotal.StringFixed(2))
	docs.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestReconcile_ConcurrentModificationSkipped(t *testing.T) {
	docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
	doc := driftedDoc(domain.StatusDraft)
	docs.On("Update", mock.Anything, mock.Anything, int64(4)).Return(domain.ErrConcurrentModification)

	out, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc, options{apply: true})

	require.NoError(t, err)
	assert.Equal(t, outcomeDrift, out)
	assert.Equal(t, int64(4), doc.Version)
	assert.Equal(t, "100.00", doc.Totals.GrandTotal.StringFixed(2))
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReconcile_UpdateFailure(t *testing.T) {
	docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
	doc := driftedDoc(domain.StatusDraft)
	docs.On("Update", mock.Anything, mock.Anything, int64(4)).Return(errors.New("connection reset"))

	_, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc, options{apply: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXP-2025-007")
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReconcile_AuditFailureIsNotFatal(t *testing.T) {
	docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
	doc := driftedDoc(domain.StatusDraft)
	docs.On("Update", mock.Anything, mock.Anything, int64(4)).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(errors.New("audit table locked"))

	out, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc, options{apply: true})

	require.NoError(t, err)
	assert.Equal(t, outcomeFixed, out)
	assert.Equal(t, int64(5), doc.Version)
}

func TestReconcile_TerminalDocuments(t *testing.T) {
	t.Run("left unchanged by default", func(t *testing.T) {
		docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
		doc := driftedDoc(domain.StatusPaid)

		out, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc, options{apply: true})

		require.NoError(t, err)
		assert.Equal(t, outcomeDrift, out)
		docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rewritten when included", func(t *testing.T) {
		docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
		doc := driftedDoc(domain.StatusPaid)
		docs.On("Update", mock.Anything, mock.Anything, int64(4)).Return(nil)
		audit.On("Create", mock.Anything, mock.Anything).Return(nil)

		out, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc,
			options{apply: true, includeTerminal: true})

		require.NoError(t, err)
		assert.Equal(t, outcomeFixed, out)
	})
}

func TestReconcile_UncomputableDocumentSkipped(t *testing.T) {
	docs, audit := new(mocks.MockDocumentRepo), new(mocks.MockDocumentAuditRepo)
	doc := driftedDoc(domain.StatusDraft)
	doc.LineItems[0].TaxRate = dec("150")

	out, err := reconcile(context.Background(), docs, audit, zerolog.Nop(), doc, options{apply: true})

	require.NoError(t, err)
	assert.Equal(t, outcomeSkipped, out)
	docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
