package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"erpdesk/internal/config"
	"erpdesk/internal/domain"
	"erpdesk/internal/service"
	"erpdesk/mocks"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-key-for-unit-tests",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "erpdesk-test",
	}
}

func hashPassword(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash)
}

type authFixture struct {
	svc        service.AuthService
	tenantRepo *mocks.MockTenantRepo
	userRepo   *mocks.MockUserRepo
	tenant     *domain.Tenant
	user       *domain.User
}

func setupAuth() authFixture {
	tenantRepo := new(mocks.MockTenantRepo)
	userRepo := new(mocks.MockUserRepo)
	tenantID := uuid.New()
	return authFixture{
		svc:        service.NewAuthService(userRepo, tenantRepo, testJWTConfig(), zerolog.Nop()),
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		tenant:     &domain.Tenant{ID: tenantID, Slug: "acme", IsActive: true},
		user: &domain.User{
			ID:           uuid.New(),
			TenantID:     tenantID,
			Email:        "user@acme.test",
			PasswordHash: hashPassword("password123"),
			Role:         domain.RoleFinance,
			IsActive:     true,
		},
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := setupAuth()
	f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(f.tenant, nil)
	f.userRepo.On("GetByEmail", mock.Anything, f.tenant.ID, "user@acme.test").Return(f.user, nil)

	pair, err := f.svc.Login(context.Background(), service.LoginInput{
		TenantSlug: " ACME ",
		Email:      "User@Acme.test",
		Password:   "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	claims, err := f.svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	actor := claims.Actor()
	assert.Equal(t, f.tenant.ID, actor.TenantID)
	assert.Equal(t, f.user.ID, actor.UserID)
	assert.Equal(t, domain.RoleFinance, actor.Role)
}

func TestAuthService_Login_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f authFixture)
		pass  string
		want  error
	}{
		{
			name: "unknown tenant",
			setup: func(f authFixture) {
				f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(nil, domain.ErrNotFound)
			},
			pass: "password123",
			want: domain.ErrInvalidCredentials,
		},
		{
			name: "inactive tenant",
			setup: func(f authFixture) {
				f.tenant.IsActive = false
				f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(f.tenant, nil)
			},
			pass: "password123",
			want: domain.ErrTenantInactive,
		},
		{
			name: "unknown user",
			setup: func(f authFixture) {
				f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(f.tenant, nil)
				f.userRepo.On("GetByEmail", mock.Anything, f.tenant.ID, "user@acme.test").Return(nil, domain.ErrNotFound)
			},
			pass: "password123",
			want: domain.ErrInvalidCredentials,
		},
		{
			name: "inactive user",
			setup: func(f authFixture) {
				f.user.IsActive = false
				f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(f.tenant, nil)
				f.userRepo.On("GetByEmail", mock.Anything, f.tenant.ID, "user@acme.test").Return(f.user, nil)
			},
			pass: "password123",
			want: domain.ErrUserInactive,
		},
		{
			name: "wrong password",
			setup: func(f authFixture) {
				f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(f.tenant, nil)
				f.userRepo.On("GetByEmail", mock.Anything, f.tenant.ID, "user@acme.test").Return(f.user, nil)
			},
			pass: "wrong-password",
			want: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuth()
			tt.setup(f)

			pair, err := f.svc.Login(context.Background(), service.LoginInput{
				TenantSlug: "acme", Email: "user@acme.test", Password: tt.pass,
			})

			assert.Nil(t, pair)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_ValidateToken_RejectsRefreshToken(t *testing.T) {
	f := setupAuth()
	f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(f.tenant, nil)
	f.userRepo.On("GetByEmail", mock.Anything, f.tenant.ID, "user@acme.test").Return(f.user, nil)

	pair, err := f.svc.Login(context.Background(), service.LoginInput{
		TenantSlug: "acme", Email: "user@acme.test", Password: "password123",
	})
	require.NoError(t, err)

	_, err = f.svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestAuthService_ValidateToken_InvalidSignature(t *testing.T) {
	f := setupAuth()
	other := service.NewAuthService(f.userRepo, f.tenantRepo, config.JWTConfig{
		Secret: "another-secret", AccessTokenExpiry: time.Minute, RefreshTokenExpiry: time.Hour,
	}, zerolog.Nop())
	f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(f.tenant, nil)
	f.userRepo.On("GetByEmail", mock.Anything, f.tenant.ID, "user@acme.test").Return(f.user, nil)

	pair, err := other.Login(context.Background(), service.LoginInput{
		TenantSlug: "acme", Email: "user@acme.test", Password: "password123",
	})
	require.NoError(t, err)

	_, err = f.svc.ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestAuthService_ValidateToken_RejectsSystemRole(t *testing.T) {
	f := setupAuth()
	cfg := testJWTConfig()
	claims := &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Audience:  jwt.ClaimStrings{"access"},
		},
		TenantID: f.tenant.ID,
		Role:     domain.RoleSystem,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = f.svc.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_RefreshToken(t *testing.T) {
	f := setupAuth()
	f.tenantRepo.On("GetBySlug", mock.Anything, "acme").Return(f.tenant, nil)
	f.userRepo.On("GetByEmail", mock.Anything, f.tenant.ID, "user@acme.test").Return(f.user, nil)
	f.userRepo.On("GetByID", mock.Anything, f.tenant.ID, f.user.ID).Return(f.user, nil)

	pair, err := f.svc.Login(context.Background(), service.LoginInput{
		TenantSlug: "acme", Email: "user@acme.test", Password: "password123",
	})
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = f.svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
