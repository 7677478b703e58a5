package port

import (
	"context"

	"github.com/google/uuid"

	"erpdesk/internal/domain"
)

// StatsRepository provides aggregate statistics queries.
type StatsRepository interface {
	CountByStatus(ctx context.Context, tenantID uuid.UUID) ([]domain.StatusCount, error)
}
