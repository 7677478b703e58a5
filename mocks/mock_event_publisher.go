package mocks

import (
	"github.com/stretchr/testify/mock"

	"erpdesk/internal/domain"
)

// MockEventPublisher is a mock implementation of port.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event domain.DocumentEvent) {
	m.Called(event)
}
