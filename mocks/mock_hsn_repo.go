package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"erpdesk/internal/domain"
)

// MockHSNRepo is a mock implementation of port.HSNRepository.
type MockHSNRepo struct {
	mock.Mock
}

func (m *MockHSNRepo) LookupRate(ctx context.Context, code string) (*domain.HSNRate, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HSNRate), args.Error(1)
}
