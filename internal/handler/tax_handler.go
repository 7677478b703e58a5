package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"erpdesk/internal/port"
	"erpdesk/internal/service"
)

// TaxHandler serves GST calculations that do not touch stored documents.
type TaxHandler struct {
	documentService service.DocumentService
	hsnRepo         port.HSNRepository
	log             zerolog.Logger
}

// NewTaxHandler creates a new TaxHandler.
func NewTaxHandler(documentService service.DocumentService, hsnRepo port.HSNRepository, log zerolog.Logger) *TaxHandler {
	return &TaxHandler{documentService: documentService, hsnRepo: hsnRepo, log: log}
}

// Preview handles POST /api/v1/tax/preview
// @Summary Preview GST totals
// @Description Compute line and document totals for a draft without saving it
// @Tags tax
// @Accept json
// @Produce json
// @Param request body service.PreviewInput true "Line items"
// @Success 200 {object} Response{data=tax.Result} "Computed totals"
// @Failure 400 {object} ErrorResponseBody "Invalid amount or rate"
// @Security BearerAuth
// @Router /tax/preview [post]
func (h *TaxHandler) Preview(c *gin.Context) {
	var input service.PreviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.documentService.PreviewTotals(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, result)
}

// LookupHSN handles GET /api/v1/tax/hsn/:code
// @Summary Look up a GST rate
// @Description Rate of the longest registered HSN/SAC prefix of code
// @Tags tax
// @Produce json
// @Param code path string true "HSN or SAC code"
// @Success 200 {object} Response{data=domain.HSNRate} "Registered rate"
// @Failure 422 {object} ErrorResponseBody "No rate registered"
// @Security BearerAuth
// @Router /tax/hsn/{code} [get]
func (h *TaxHandler) LookupHSN(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "code is required")
		return
	}

	rate, err := h.hsnRepo.LookupRate(c.Request.Context(), code)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, rate)
}
