package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"erpdesk/internal/domain"
	"erpdesk/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"document not found before generic", fmt.Errorf("docRepo.GetByID: %w", domain.ErrDocumentNotFound), http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found"},
		{"lifecycle guard is forbidden not unauthenticated", fmt.Errorf("%w: role member", domain.ErrNotPermitted), http.StatusForbidden, "NOT_PERMITTED", "unauthorized: actor may not perform this action: role member"},
		{"token failure", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"},
		{"generic not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
		{"detail kept for transitions", fmt.Errorf("%w: sent -> paid", domain.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION", "invalid status transition: sent -> paid"},
		{"detail hidden for export", fmt.Errorf("%w: s3 timeout", domain.ErrExportFailed), http.StatusBadGateway, "EXPORT_FAILED", "document register export failed"},
		{"concurrent modification", domain.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION", "document was modified by someone else; reload and retry"},
		{"invalid amount", fmt.Errorf("line 2: %w: quantity must not be negative", domain.ErrInvalidAmount), http.StatusBadRequest, "INVALID_AMOUNT", "line 2: invalid amount: quantity must not be negative"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestHandleError_RecordsError(t *testing.T) {
	c, w := newRequest(http.MethodGet, "/api/v1/documents", nil)

	handler.HandleError(c, testLog, domain.ErrForbidden)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, c.Errors, 1)
	assert.False(t, decodeResponse(t, w).Success)
}
