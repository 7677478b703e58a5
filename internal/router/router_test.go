package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"erpdesk/internal/config"
	"erpdesk/internal/domain"
	"erpdesk/internal/handler"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/router"
	"erpdesk/internal/service"
	"erpdesk/mocks"
)

type testDeps struct {
	engine *gin.Engine
	auth   *mocks.MockAuthService
	docs   *mocks.MockDocumentService
}

func setup(t *testing.T) testDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	authSvc := new(mocks.MockAuthService)
	docSvc := new(mocks.MockDocumentService)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, new(mocks.MockRegistrationService), log),
		Document: handler.NewDocumentHandler(docSvc, log),
		Tax:      handler.NewTaxHandler(docSvc, new(mocks.MockHSNRepo), log),
		Export:   handler.NewExportHandler(new(mocks.MockExportService), log),
		Stats:    handler.NewStatsHandler(new(mocks.MockStatsService), log),
		Tenant:   handler.NewTenantHandler(new(mocks.MockTenantService), log),
		User:     handler.NewUserHandler(new(mocks.MockUserService), log),
		Health:   handler.NewHealthHandler(handler.PingFunc(func(context.Context) error { return nil }), nil),
	}
	engine := router.Setup(authSvc, h, router.Options{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}, log)

	return testDeps{engine: engine, auth: authSvc, docs: docSvc}
}

func (d testDeps) withToken(token string, role domain.UserRole) (tenantID, userID uuid.UUID) {
	tenantID, userID = uuid.New(), uuid.New()
	d.auth.On("ValidateToken", token).Return(&service.Claims{
		TenantID: tenantID,
		UserID:   userID,
		Email:    "user@acme.in",
		Role:     role,
	}, nil)
	return tenantID, userID
}

func serve(engine *gin.Engine, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouter_Healthz(t *testing.T) {
	d := setup(t)

	w := serve(d.engine, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_ProtectedRouteRequiresToken(t *testing.T) {
	d := setup(t)

	w := serve(d.engine, http.MethodGet, "/api/v1/documents", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	d.docs.AssertNotCalled(t, "List")
}

func TestRouter_DocumentListWithToken(t *testing.T) {
	d := setup(t)
	tenantID, userID := d.withToken("good", domain.RoleMember)

	actor := lifecycle.Actor{TenantID: tenantID, UserID: userID, Role: domain.RoleMember}
	d.docs.On("List", mock.Anything, actor, mock.Anything, 0, 20).Return([]domain.Document{}, 0, nil)

	w := serve(d.engine, http.MethodGet, "/api/v1/documents", "good")

	assert.Equal(t, http.StatusOK, w.Code)
	d.docs.AssertExpectations(t)
}

func TestRouter_ExportsRequireFinanceRole(t *testing.T) {
	d := setup(t)
	d.withToken("member-token", domain.RoleMember)

	w := serve(d.engine, http.MethodGet, "/api/v1/exports/documents", "member-token")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_SwaggerDisabledByDefault(t *testing.T) {
	d := setup(t)

	w := serve(d.engine, http.MethodGet, "/swagger/index.html", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RealtimeNotMountedWithoutHub(t *testing.T) {
	d := setup(t)
	d.withToken("good", domain.RoleMember)

	w := serve(d.engine, http.MethodGet, "/api/v1/ws", "good")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_TenantUpdateRequiresAdmin(t *testing.T) {
	d := setup(t)
	d.withToken("manager-token", domain.RoleManager)

	w := serve(d.engine, http.MethodPut, "/api/v1/tenant", "manager-token")

	assert.Equal(t, http.StatusForbidden, w.Code)
}
