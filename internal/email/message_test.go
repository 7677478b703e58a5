package email_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"erpdesk/internal/domain"
	"erpdesk/internal/email"
)

func testDoc() *domain.Document {
	return &domain.Document{
		ID:       uuid.MustParse("7b0c2f8e-4a55-4a38-9a0e-2f4d1c3b8e11"),
		Kind:     domain.KindExpense,
		Code:     "EXP-2025-004",
		Title:    "Client <visit>",
		Status:   domain.StatusApproved,
		Currency: "INR",
		Totals:   domain.Totals{GrandTotal: decimal.RequireFromString("1234.5")},
	}
}

func TestApprovalRequest(t *testing.T) {
	msg := email.ApprovalRequest("https://app.example.com/", "Asha", testDoc())

	assert.Equal(t, "Expense report EXP-2025-004 is waiting for your approval", msg.Subject)
	assert.Contains(t, msg.Text, "INR 1234.50")
	assert.Contains(t, msg.Text, "https://app.example.com/documents/7b0c2f8e-4a55-4a38-9a0e-2f4d1c3b8e11")
	assert.Contains(t, msg.HTML, "Client &lt;visit&gt;")
	assert.NotContains(t, msg.HTML, "<visit>")
}

func TestStatusChanged(t *testing.T) {
	msg := email.StatusChanged("https://app.example.com", "Ravi", testDoc())

	assert.Equal(t, "Expense report EXP-2025-004 is now approved", msg.Subject)
	assert.Contains(t, msg.Text, "Hi Ravi")
	assert.Contains(t, msg.HTML, "<strong>approved</strong>")
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "E-way bill", email.KindLabel(domain.KindEWayBill))
	assert.Equal(t, "mystery", email.KindLabel(domain.DocumentKind("mystery")))
}
