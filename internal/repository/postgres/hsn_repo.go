package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"erpdesk/internal/domain"
	"erpdesk/internal/port"
)

type hsnRepo struct {
	db *sqlx.DB
}

// NewHSNRepo creates a new PostgreSQL-backed HSNRepository.
func NewHSNRepo(db *sqlx.DB) port.HSNRepository {
	return &hsnRepo{db: db}
}

func (r *hsnRepo) LookupRate(ctx context.Context, code string) (*domain.HSNRate, error) {
	var rate domain.HSNRate
	err := r.db.GetContext(ctx, &rate,
		`SELECT code, description, gst_rate, cess_rate
		 FROM hsn_codes
		 WHERE $1 LIKE code || '%'
		   AND (effective_to IS NULL OR effective_to >= CURRENT_DATE)
		 ORDER BY length(code) DESC, gst_rate DESC
		 LIMIT 1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrHSNNotFound, code)
		}
		return nil, fmt.Errorf("hsnRepo.LookupRate: %w", err)
	}
	return &rate, nil
}
