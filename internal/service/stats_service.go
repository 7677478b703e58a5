package service

import (
	"context"

	"github.com/google/uuid"

	"erpdesk/internal/domain"
	"erpdesk/internal/port"
)

// StatsService provides aggregate statistics.
type StatsService interface {
	GetStats(ctx context.Context, tenantID uuid.UUID) (*domain.Stats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetStats(ctx context.Context, tenantID uuid.UUID) (*domain.Stats, error) {
	counts, err := s.statsRepo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats := &domain.Stats{ByStatus: counts}
	if stats.ByStatus == nil {
		stats.ByStatus = []domain.StatusCount{}
	}
	for _, c := range counts {
		stats.TotalDocuments += c.Count
	}
	return stats, nil
}
