package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"erpdesk/internal/domain"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// errorMapping describes how one sentinel is reported. With detail set the
// wrapped error text is returned, since it names the offending field.
type errorMapping struct {
	err    error
	status int
	code   string
	msg    string
	detail bool
}

var errorMappings = []errorMapping{
	{domain.ErrDocumentNotFound, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found", false},
	{domain.ErrHSNNotFound, http.StatusUnprocessableEntity, "HSN_NOT_FOUND", "no GST rate registered for HSN code", true},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found", false},
	{domain.ErrNotPermitted, http.StatusForbidden, "NOT_PERMITTED", "actor may not perform this action", true},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", false},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "forbidden", false},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", false},
	{domain.ErrTenantInactive, http.StatusForbidden, "TENANT_INACTIVE", "tenant is inactive", false},
	{domain.ErrUserInactive, http.StatusForbidden, "USER_INACTIVE", "user is inactive", false},
	{domain.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL", "email already exists for this tenant", false},
	{domain.ErrDuplicateTenantSlug, http.StatusConflict, "DUPLICATE_SLUG", "tenant slug already exists", false},
	{domain.ErrInvalidTenantSlug, http.StatusBadRequest, "INVALID_TENANT_SLUG", "tenant slug must be 2-63 lowercase letters, digits or hyphens", false},
	{domain.ErrInvalidStateCode, http.StatusBadRequest, "INVALID_STATE_CODE", "unknown GST state code", true},
	{domain.ErrInvalidTenantName, http.StatusBadRequest, "INVALID_TENANT_NAME", "tenant name must not be empty", false},
	{domain.ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE", "invalid role; allowed: admin, manager, finance, member", false},
	{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", "invalid status transition", true},
	{domain.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION", "document was modified by someone else; reload and retry", false},
	{domain.ErrDocumentLocked, http.StatusConflict, "DOCUMENT_LOCKED", "document can no longer be edited", true},
	{domain.ErrApprovalPending, http.StatusConflict, "APPROVAL_PENDING", "earlier approval steps are still pending", true},
	{domain.ErrDocumentReferenced, http.StatusConflict, "DOCUMENT_REFERENCED", "document is referenced by another document", true},
	{domain.ErrDerivationNotAllowed, http.StatusConflict, "DERIVATION_NOT_ALLOWED", "document cannot be derived in its current status", true},
	{domain.ErrBelowEWayBillThreshold, http.StatusUnprocessableEntity, "BELOW_EWAY_BILL_THRESHOLD", "consignment value is below the e-way bill threshold", true},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT", "invalid amount", true},
	{domain.ErrInvalidTaxRate, http.StatusBadRequest, "INVALID_TAX_RATE", "invalid tax rate", true},
	{domain.ErrNoApprovers, http.StatusBadRequest, "NO_APPROVERS", "at least one approver is required", false},
	{domain.ErrInvalidApprover, http.StatusBadRequest, "INVALID_APPROVER", "approver cannot review documents", true},
	{domain.ErrInvalidDocumentKind, http.StatusBadRequest, "INVALID_DOCUMENT_KIND", "invalid document kind", true},
	{domain.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS", "invalid initial status for document kind", true},
	{domain.ErrInvalidSupplyType, http.StatusBadRequest, "INVALID_SUPPLY_TYPE", "invalid supply type", true},
	{domain.ErrInvalidGSTIN, http.StatusBadRequest, "INVALID_GSTIN", "invalid GSTIN", true},
	{domain.ErrExportFailed, http.StatusBadGateway, "EXPORT_FAILED", "document register export failed", false},
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.detail {
				return m.status, m.code, err.Error()
			}
			return m.status, m.code, m.msg
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
}

// extractAuthContext extracts tenant ID, user ID, and role from the request context.
// Returns false if auth context is missing (error response already written).
func extractAuthContext(c *gin.Context) (tenantID, userID uuid.UUID, role domain.UserRole, ok bool) {
	var err error
	tenantID, err = middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return uuid.Nil, uuid.Nil, "", false
	}
	userID, err = middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, uuid.Nil, "", false
	}
	role = domain.UserRole(middleware.GetRole(c))
	return tenantID, userID, role, true
}

// extractActor returns the lifecycle actor for the request, writing a 401
// when it is missing.
func extractActor(c *gin.Context) (lifecycle.Actor, bool) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return lifecycle.Actor{}, false
	}
	return actor, true
}

// parseUUIDParam reads a path parameter as a UUID, writing a 400 on failure.
func parseUUIDParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, code, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// HandleError maps a domain error and sends the appropriate error response.
// Server errors are logged with the request ID.
func HandleError(c *gin.Context, log zerolog.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= http.StatusInternalServerError {
		requestID, _ := c.Get("request_id")
		log.Error().Err(err).Interface("request_id", requestID).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	_ = c.Error(err)
	RespondError(c, status, code, msg)
}
