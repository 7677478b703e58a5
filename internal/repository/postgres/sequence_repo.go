package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"erpdesk/internal/domain"
	"erpdesk/internal/port"
)

type sequenceRepo struct {
	db *sqlx.DB
}

// NewSequenceRepo creates a PostgreSQL-backed SequenceGenerator. Counters are
// kept per tenant, kind and year in document_sequences.
func NewSequenceRepo(db *sqlx.DB) port.SequenceGenerator {
	return &sequenceRepo{db: db}
}

func (r *sequenceRepo) Next(ctx context.Context, tenantID uuid.UUID, kind domain.DocumentKind, year int) (string, error) {
	var n int64
	err := r.db.GetContext(ctx, &n,
		`INSERT INTO document_sequences (tenant_id, kind, year, last_value)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (tenant_id, kind, year)
		 DO UPDATE SET last_value = document_sequences.last_value + 1
		 RETURNING last_value`,
		tenantID, kind, year)
	if err != nil {
		return "", fmt.Errorf("sequenceRepo.Next: %w", err)
	}
	return FormatCode(kind, year, n), nil
}

// FormatCode renders a business code like EXP-2024-001.
func FormatCode(kind domain.DocumentKind, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%03d", kind.CodePrefix(), year, n)
}
