package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"erpdesk/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendApprovalRequest(ctx context.Context, toEmail, toName string, doc *domain.Document) error {
	args := m.Called(ctx, toEmail, toName, doc)
	return args.Error(0)
}

func (m *MockEmailSender) SendStatusChanged(ctx context.Context, toEmail, toName string, doc *domain.Document) error {
	args := m.Called(ctx, toEmail, toName, doc)
	return args.Error(0)
}
