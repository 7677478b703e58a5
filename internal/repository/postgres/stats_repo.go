package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"erpdesk/internal/domain"
	"erpdesk/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const statusCountQuery = `SELECT
	kind,
	status,
	COUNT(*) AS count,
	COALESCE(SUM((totals->>'grand_total')::numeric), 0) AS grand_total
FROM documents
WHERE tenant_id = $1
GROUP BY kind, status
ORDER BY kind, status`

func (r *statsRepo) CountByStatus(ctx context.Context, tenantID uuid.UUID) ([]domain.StatusCount, error) {
	var counts []domain.StatusCount
	if err := r.db.SelectContext(ctx, &counts, statusCountQuery, tenantID); err != nil {
		return nil, fmt.Errorf("statsRepo.CountByStatus: %w", err)
	}
	return counts, nil
}
