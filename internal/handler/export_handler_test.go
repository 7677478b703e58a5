package handler_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"erpdesk/internal/domain"
	"erpdesk/internal/handler"
	"erpdesk/internal/port"
	"erpdesk/internal/service"
	"erpdesk/mocks"
)

func newExportHandler() (*handler.ExportHandler, *mocks.MockExportService) {
	mockSvc := new(mocks.MockExportService)
	return handler.NewExportHandler(mockSvc, testLog), mockSvc
}

func TestExportHandler_Download_CSV(t *testing.T) {
	h, mockSvc := newExportHandler()
	tenantID := uuid.New()

	mockSvc.On("Write", mock.Anything, tenantID, mock.MatchedBy(func(f port.DocumentFilter) bool {
		return f.Kind == domain.KindEInvoice
	}), service.ExportCSV, mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(4).(io.Writer)
			_, _ = w.Write([]byte("Code,Kind\nINV-2025-001,einvoice\n"))
		}).
		Return(1, nil)

	c, w := newRequest(http.MethodGet, "/api/v1/exports/documents?kind=einvoice", nil)
	setAuthContext(c, tenantID, uuid.New(), "finance")

	h.Download(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "einvoice_register_")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "INV-2025-001")
	mockSvc.AssertExpectations(t)
}

func TestExportHandler_Download_UnknownFormat(t *testing.T) {
	h, mockSvc := newExportHandler()

	c, w := newRequest(http.MethodGet, "/api/v1/exports/documents?format=pdf", nil)
	setAuthContext(c, uuid.New(), uuid.New(), "finance")

	h.Download(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORMAT", decodeResponse(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Write")
}

func TestExportHandler_Publish_Success(t *testing.T) {
	h, mockSvc := newExportHandler()
	tenantID := uuid.New()

	result := &service.ExportResult{
		Filename:  "register_2025-03-09.xlsx",
		Key:       "exports/" + tenantID.String() + "/20250309T120000/register_2025-03-09.xlsx",
		URL:       "https://example.invalid/presigned",
		Documents: 42,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	mockSvc.On("Publish", mock.Anything, tenantID, mock.Anything, service.ExportXLSX).Return(result, nil)

	c, w := newRequest(http.MethodPost, "/api/v1/exports/documents?format=xlsx", nil)
	setAuthContext(c, tenantID, uuid.New(), "admin")

	h.Publish(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(42), data["documents"])
	mockSvc.AssertExpectations(t)
}

func TestExportHandler_Publish_StorageUnavailable(t *testing.T) {
	h, mockSvc := newExportHandler()
	mockSvc.On("Publish", mock.Anything, mock.Anything, mock.Anything, service.ExportCSV).
		Return(nil, fmt.Errorf("%w: object storage is not configured", domain.ErrExportFailed))

	c, w := newRequest(http.MethodPost, "/api/v1/exports/documents", nil)
	setAuthContext(c, uuid.New(), uuid.New(), "admin")

	h.Publish(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "EXPORT_FAILED", decodeResponse(t, w).Error.Code)
}
