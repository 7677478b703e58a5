package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"erpdesk/internal/domain"
	"erpdesk/internal/service"
	"erpdesk/mocks"
)

func TestStatsService_GetStats(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewStatsService(repo)
	tenantID := uuid.New()

	repo.On("CountByStatus", mock.Anything, tenantID).Return([]domain.StatusCount{
		{Kind: domain.KindExpense, Status: domain.StatusDraft, Count: 3, GrandTotal: dec("1500")},
		{Kind: domain.KindEInvoice, Status: domain.StatusGenerated, Count: 2, GrandTotal: dec("99000")},
	}, nil)

	stats, err := svc.GetStats(context.Background(), tenantID)

	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalDocuments)
	assert.Len(t, stats.ByStatus, 2)
}

func TestStatsService_GetStats_Empty(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewStatsService(repo)
	tenantID := uuid.New()
	repo.On("CountByStatus", mock.Anything, tenantID).Return(nil, nil)

	stats, err := svc.GetStats(context.Background(), tenantID)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalDocuments)
	assert.NotNil(t, stats.ByStatus)
}

func TestStatsService_GetStats_Error(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewStatsService(repo)
	tenantID := uuid.New()
	repo.On("CountByStatus", mock.Anything, tenantID).Return(nil, errors.New("db down"))

	_, err := svc.GetStats(context.Background(), tenantID)

	assert.Error(t, err)
}
