package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"erpdesk/internal/service"
)

// TenantHandler serves the caller's tenant settings.
type TenantHandler struct {
	tenantService service.TenantService
	log           zerolog.Logger
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenantService service.TenantService, log zerolog.Logger) *TenantHandler {
	return &TenantHandler{tenantService: tenantService, log: log}
}

// Get handles GET /api/v1/tenant
// @Summary Get tenant settings
// @Tags tenant
// @Produce json
// @Success 200 {object} Response{data=domain.Tenant} "Tenant settings"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /tenant [get]
func (h *TenantHandler) Get(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, tenant)
}

// Update handles PUT /api/v1/tenant
// @Summary Update tenant settings
// @Description Change the display name or the GST state code used to pick intra- or inter-state supply
// @Tags tenant
// @Accept json
// @Produce json
// @Param request body service.UpdateTenantInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Tenant} "Updated tenant"
// @Failure 400 {object} ErrorResponseBody "Invalid state code"
// @Security BearerAuth
// @Router /tenant [put]
func (h *TenantHandler) Update(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.UpdateTenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), tenantID, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, tenant)
}
