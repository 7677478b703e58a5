package postgres_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"erpdesk/internal/domain"
	"erpdesk/internal/repository/postgres"
)

func TestFormatCode(t *testing.T) {
	tests := []struct {
		kind domain.DocumentKind
		year int
		n    int64
		want string
	}{
		{domain.KindExpense, 2024, 1, "EXP-2024-001"},
		{domain.KindQuotation, 2025, 42, "QUO-2025-042"},
		{domain.KindEInvoice, 2025, 999, "INV-2025-999"},
		{domain.KindEWayBill, 2025, 1000, "EWB-2025-1000"},
		{domain.KindBooking, 2026, 7, "BKG-2026-007"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, postgres.FormatCode(tt.kind, tt.year, tt.n))
		})
	}
}
