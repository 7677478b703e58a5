package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"erpdesk/internal/domain"
	"erpdesk/internal/gst"
	"erpdesk/internal/port"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// RegisterInput is the DTO for signing up a new organisation.
type RegisterInput struct {
	TenantName string `json:"tenant_name" binding:"required"`
	TenantSlug string `json:"tenant_slug" binding:"required"`
	StateCode  string `json:"state_code"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FullName   string `json:"full_name" binding:"required"`
}

// RegisterOutput contains the results of a successful registration.
type RegisterOutput struct {
	Tenant *domain.Tenant `json:"tenant"`
	User   *domain.User   `json:"user"`
	Tokens *TokenPair     `json:"tokens"`
}

// RegistrationService creates a tenant together with its first admin.
type RegistrationService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
}

type registrationService struct {
	tenantRepo       port.TenantRepository
	userRepo         port.UserRepository
	authSvc          AuthService
	defaultStateCode string
	log              zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	tenantRepo port.TenantRepository,
	userRepo port.UserRepository,
	authSvc AuthService,
	defaultStateCode string,
	log zerolog.Logger,
) RegistrationService {
	return &registrationService{
		tenantRepo:       tenantRepo,
		userRepo:         userRepo,
		authSvc:          authSvc,
		defaultStateCode: defaultStateCode,
		log:              log,
	}
}

func (s *registrationService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	slug := strings.ToLower(strings.TrimSpace(input.TenantSlug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTenantSlug, input.TenantSlug)
	}
	stateCode := strings.TrimSpace(input.StateCode)
	if stateCode == "" {
		stateCode = s.defaultStateCode
	}
	if !gst.IsStateCode(stateCode) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStateCode, stateCode)
	}

	tenant := &domain.Tenant{
		Name:      strings.TrimSpace(input.TenantName),
		Slug:      slug,
		StateCode: stateCode,
		IsActive:  true,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err // ErrDuplicateTenantSlug propagates naturally
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		TenantID:     tenant.ID,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating admin user: %w", err)
	}

	tokens, err := s.authSvc.Login(ctx, LoginInput{
		TenantSlug: slug,
		Email:      user.Email,
		Password:   input.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.log.Info().
		Str("tenant_id", tenant.ID.String()).
		Str("slug", slug).
		Msg("registration: tenant created")

	return &RegisterOutput{
		Tenant: tenant,
		User:   user,
		Tokens: tokens,
	}, nil
}
