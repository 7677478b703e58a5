package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"erpdesk/internal/domain"
	"erpdesk/internal/port"
	"erpdesk/internal/service"
)

// DocumentHandler handles document lifecycle endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
	log             zerolog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, log: log}
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates.
func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// parseDocumentFilter reads kind, status, created_by, from and to query
// parameters. created_by=me resolves to the caller. It writes a 400 and
// returns false on bad input.
func parseDocumentFilter(c *gin.Context, userID uuid.UUID) (port.DocumentFilter, bool) {
	var filter port.DocumentFilter

	if v := c.Query("kind"); v != "" {
		kind := domain.DocumentKind(v)
		if !domain.ValidDocumentKinds[kind] {
			RespondError(c, http.StatusBadRequest, "INVALID_DOCUMENT_KIND", "unknown document kind")
			return filter, false
		}
		filter.Kind = kind
	}
	filter.Status = domain.DocumentStatus(c.Query("status"))

	if v := c.Query("created_by"); v != "" {
		id := userID
		if v != "me" {
			parsed, err := uuid.Parse(v)
			if err != nil {
				RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "created_by must be a user ID or 'me'")
				return filter, false
			}
			id = parsed
		}
		filter.CreatedBy = &id
	}

	if v := c.Query("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "from must be a date or RFC 3339 timestamp")
			return filter, false
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "to must be a date or RFC 3339 timestamp")
			return filter, false
		}
		filter.To = &t
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "to must not be before from")
		return filter, false
	}
	return filter, true
}

// Create handles POST /api/v1/documents
// @Summary Create a document
// @Description Create a document in its kind's initial status with totals computed from its line items
// @Tags documents
// @Accept json
// @Produce json
// @Param request body service.CreateDocumentInput true "Document details"
// @Success 201 {object} Response{data=domain.Document} "Document created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 422 {object} ErrorResponseBody "HSN code has no registered rate"
// @Security BearerAuth
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.CreateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, doc)
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document by ID
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Document} "Document details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	docID, ok := parseUUIDParam(c, "id", "INVALID_ID")
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), actor, docID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, doc)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Tags documents
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Param kind query string false "Filter by kind"
// @Param status query string false "Filter by status"
// @Param created_by query string false "Filter by creator ID, or 'me'"
// @Param from query string false "Created at or after (date or RFC 3339)"
// @Param to query string false "Created before (date or RFC 3339)"
// @Success 200 {object} Response{data=[]domain.Document,meta=PagMeta} "List of documents"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	filter, ok := parseDocumentFilter(c, actor.UserID)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	docs, total, err := h.documentService.List(c.Request.Context(), actor, filter, offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// RecomputeTotals handles PUT /api/v1/documents/:id/lines
// @Summary Replace line items
// @Description Replace line items and discount and recompute GST totals. Only editable statuses accept this.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body service.RecomputeTotalsInput true "Line items"
// @Success 200 {object} Response{data=domain.Document} "Document updated"
// @Failure 409 {object} ErrorResponseBody "Document locked or modified concurrently"
// @Security BearerAuth
// @Router /documents/{id}/lines [put]
func (h *DocumentHandler) RecomputeTotals(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	docID, ok := parseUUIDParam(c, "id", "INVALID_ID")
	if !ok {
		return
	}

	var input service.RecomputeTotalsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doc, err := h.documentService.RecomputeTotals(c.Request.Context(), actor, docID, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, doc)
}

// Transition handles POST /api/v1/documents/:id/transitions
// @Summary Change document status
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body service.TransitionInput true "Target status"
// @Success 200 {object} Response{data=domain.Document} "Document after the transition"
// @Failure 403 {object} ErrorResponseBody "Actor may not perform this transition"
// @Failure 409 {object} ErrorResponseBody "Transition not allowed or document modified concurrently"
// @Security BearerAuth
// @Router /documents/{id}/transitions [post]
func (h *DocumentHandler) Transition(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	docID, ok := parseUUIDParam(c, "id", "INVALID_ID")
	if !ok {
		return
	}

	var input service.TransitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doc, err := h.documentService.Transition(c.Request.Context(), actor, docID, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, doc)
}

// AllowedTransitions handles GET /api/v1/documents/:id/transitions
// @Summary List permitted next statuses
// @Description Statuses the caller could move the document to right now
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=[]string} "Target statuses"
// @Security BearerAuth
// @Router /documents/{id}/transitions [get]
func (h *DocumentHandler) AllowedTransitions(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	docID, ok := parseUUIDParam(c, "id", "INVALID_ID")
	if !ok {
		return
	}

	targets, err := h.documentService.AllowedTransitions(c.Request.Context(), actor, docID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	if targets == nil {
		targets = []domain.DocumentStatus{}
	}

	RespondOK(c, targets)
}

// Approve handles POST /api/v1/documents/:id/approve
// @Summary Approve the current step
// @Description Record the caller's approval. The last step moves the document to approved.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body service.ApproveInput false "Comment"
// @Success 200 {object} Response{data=domain.Document} "Document after approval"
// @Failure 403 {object} ErrorResponseBody "Caller is not the current approver"
// @Security BearerAuth
// @Router /documents/{id}/approve [post]
func (h *DocumentHandler) Approve(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	docID, ok := parseUUIDParam(c, "id", "INVALID_ID")
	if !ok {
		return
	}

	var input service.ApproveInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	doc, err := h.documentService.ApproveStep(c.Request.Context(), actor, docID, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, doc)
}

// Derive handles POST /api/v1/documents/:id/derive
// @Summary Derive a downstream document
// @Description Create an e-invoice from an accepted quotation, or an e-way bill from a generated e-invoice
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Source document ID (UUID)"
// @Param request body service.DeriveInput true "Target kind"
// @Success 201 {object} Response{data=domain.Document} "Derived document"
// @Failure 409 {object} ErrorResponseBody "Source cannot be derived"
// @Failure 422 {object} ErrorResponseBody "Below e-way bill threshold"
// @Security BearerAuth
// @Router /documents/{id}/derive [post]
func (h *DocumentHandler) Derive(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	sourceID, ok := parseUUIDParam(c, "id", "INVALID_ID")
	if !ok {
		return
	}

	var input service.DeriveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doc, err := h.documentService.Derive(c.Request.Context(), actor, sourceID, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, doc)
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Description Only documents still in their initial status and not referenced by a derived document can be deleted
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Document deleted"
// @Failure 409 {object} ErrorResponseBody "Document locked or referenced"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	docID, ok := parseUUIDParam(c, "id", "INVALID_ID")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), actor, docID); err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}

// History handles GET /api/v1/documents/:id/history
// @Summary Document audit trail
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.DocumentAuditEntry,meta=PagMeta} "Audit entries, newest first"
// @Security BearerAuth
// @Router /documents/{id}/history [get]
func (h *DocumentHandler) History(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	docID, ok := parseUUIDParam(c, "id", "INVALID_ID")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	entries, total, err := h.documentService.History(c.Request.Context(), actor, docID, offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}
