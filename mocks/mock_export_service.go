package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"erpdesk/internal/port"
	"erpdesk/internal/service"
)

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Write(ctx context.Context, tenantID uuid.UUID, filter port.DocumentFilter, format service.ExportFormat, w io.Writer) (int, error) {
	args := m.Called(ctx, tenantID, filter, format, w)
	return args.Int(0), args.Error(1)
}

func (m *MockExportService) Publish(ctx context.Context, tenantID uuid.UUID, filter port.DocumentFilter, format service.ExportFormat) (*service.ExportResult, error) {
	args := m.Called(ctx, tenantID, filter, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
