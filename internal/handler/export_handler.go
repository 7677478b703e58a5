package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"erpdesk/internal/csvexport"
	"erpdesk/internal/service"
)

// ExportHandler serves the document register as CSV or XLSX.
type ExportHandler struct {
	exportService service.ExportService
	log           zerolog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, log: log}
}

// Download handles GET /api/v1/exports/documents
// @Summary Download the document register
// @Description Every document matching the filters as a CSV or XLSX attachment
// @Tags exports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param kind query string false "Filter by kind"
// @Param status query string false "Filter by status"
// @Param from query string false "Created at or after"
// @Param to query string false "Created before"
// @Success 200 {file} file "Register file"
// @Failure 400 {object} ErrorResponseBody "Invalid filter or format"
// @Security BearerAuth
// @Router /exports/documents [get]
func (h *ExportHandler) Download(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}
	filter, ok := parseDocumentFilter(c, userID)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if _, err := h.exportService.Write(c.Request.Context(), tenantID, filter, format, &buf); err != nil {
		HandleError(c, h.log, err)
		return
	}

	name := "register"
	if filter.Kind != "" {
		name = string(filter.Kind) + "_register"
	}
	filename := csvexport.BuildFilename(name, string(format), time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Publish handles POST /api/v1/exports/documents
// @Summary Publish the document register
// @Description Upload the register to object storage and return a time-limited download link
// @Tags exports
// @Produce json
// @Param format query string false "csv or xlsx" default(csv)
// @Param kind query string false "Filter by kind"
// @Param status query string false "Filter by status"
// @Success 201 {object} Response{data=service.ExportResult} "Uploaded register"
// @Failure 502 {object} ErrorResponseBody "Storage unavailable"
// @Security BearerAuth
// @Router /exports/documents [post]
func (h *ExportHandler) Publish(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}
	filter, ok := parseDocumentFilter(c, userID)
	if !ok {
		return
	}

	result, err := h.exportService.Publish(c.Request.Context(), tenantID, filter, format)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, result)
}
