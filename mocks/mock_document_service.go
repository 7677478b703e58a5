package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"erpdesk/internal/domain"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/port"
	"erpdesk/internal/service"
	"erpdesk/internal/tax"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) document(args mock.Arguments) (*domain.Document, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) Create(ctx context.Context, actor lifecycle.Actor, input service.CreateDocumentInput) (*domain.Document, error) {
	return m.document(m.Called(ctx, actor, input))
}

func (m *MockDocumentService) GetByID(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) (*domain.Document, error) {
	return m.document(m.Called(ctx, actor, docID))
}

func (m *MockDocumentService) List(ctx context.Context, actor lifecycle.Actor, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, actor, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentService) RecomputeTotals(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input service.RecomputeTotalsInput) (*domain.Document, error) {
	return m.document(m.Called(ctx, actor, docID, input))
}

func (m *MockDocumentService) Transition(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input service.TransitionInput) (*domain.Document, error) {
	return m.document(m.Called(ctx, actor, docID, input))
}

func (m *MockDocumentService) ApproveStep(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input service.ApproveInput) (*domain.Document, error) {
	return m.document(m.Called(ctx, actor, docID, input))
}

func (m *MockDocumentService) AllowedTransitions(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) ([]domain.DocumentStatus, error) {
	args := m.Called(ctx, actor, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentStatus), args.Error(1)
}

func (m *MockDocumentService) Derive(ctx context.Context, actor lifecycle.Actor, sourceID uuid.UUID, input service.DeriveInput) (*domain.Document, error) {
	return m.document(m.Called(ctx, actor, sourceID, input))
}

func (m *MockDocumentService) Delete(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) error {
	args := m.Called(ctx, actor, docID)
	return args.Error(0)
}

func (m *MockDocumentService) History(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error) {
	args := m.Called(ctx, actor, docID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.DocumentAuditEntry), args.Int(1), args.Error(2)
}

func (m *MockDocumentService) PreviewTotals(ctx context.Context, input service.PreviewInput) (*tax.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Result), args.Error(1)
}
