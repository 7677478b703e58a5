package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"erpdesk/internal/domain"
	"erpdesk/internal/gst"
	"erpdesk/internal/port"
)

// UpdateTenantInput is the DTO for changing a tenant's settings. The slug is
// fixed at registration since users log in with it.
type UpdateTenantInput struct {
	Name      *string `json:"name"`
	StateCode *string `json:"state_code"`
}

// TenantService manages the caller's own tenant.
type TenantService interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error)
	Update(ctx context.Context, tenantID uuid.UUID, input UpdateTenantInput) (*domain.Tenant, error)
}

type tenantService struct {
	repo port.TenantRepository
}

// NewTenantService creates a new TenantService implementation.
func NewTenantService(repo port.TenantRepository) TenantService {
	return &tenantService{repo: repo}
}

func (s *tenantService) Get(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	return s.repo.GetByID(ctx, tenantID)
}

func (s *tenantService) Update(ctx context.Context, tenantID uuid.UUID, input UpdateTenantInput) (*domain.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidTenantName)
		}
		tenant.Name = name
	}
	if input.StateCode != nil {
		code := strings.TrimSpace(*input.StateCode)
		if !gst.IsStateCode(code) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStateCode, code)
		}
		tenant.StateCode = code
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}
