package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"erpdesk/internal/domain"
	"erpdesk/internal/handler"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/port"
	"erpdesk/internal/service"
	"erpdesk/mocks"
)

func newDocumentHandler() (*handler.DocumentHandler, *mocks.MockDocumentService) {
	mockSvc := new(mocks.MockDocumentService)
	return handler.NewDocumentHandler(mockSvc, testLog), mockSvc
}

func TestDocumentHandler_Create_Success(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	tenantID, userID := uuid.New(), uuid.New()
	actor := lifecycle.Actor{TenantID: tenantID, UserID: userID, Role: domain.RoleMember}

	doc := &domain.Document{ID: uuid.New(), TenantID: tenantID, Kind: domain.KindExpense, Code: "EXP-2025-001", Status: domain.StatusDraft, Version: 1}
	mockSvc.On("Create", mock.Anything, actor, mock.MatchedBy(func(in service.CreateDocumentInput) bool {
		return in.Kind == domain.KindExpense && len(in.Lines) == 1 && in.Lines[0].Description == "Taxi"
	})).Return(doc, nil)

	c, w := newRequest(http.MethodPost, "/api/v1/documents", `{"kind":"expense","title":"Client visit","supply_type":"intrastate","line_items":[{"description":"Taxi","quantity":"1","unit_price":"450","tax_rate":"5"}]}`)
	setAuthContext(c, tenantID, userID, "member")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "EXP-2025-001", data["code"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Create_MissingKind(t *testing.T) {
	h, mockSvc := newDocumentHandler()

	c, w := newRequest(http.MethodPost, "/api/v1/documents", `{"title":"No kind"}`)
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	mockSvc.AssertNotCalled(t, "Create")
}

func TestDocumentHandler_Create_Unauthenticated(t *testing.T) {
	h, mockSvc := newDocumentHandler()

	c, w := newRequest(http.MethodPost, "/api/v1/documents", `{"kind":"expense"}`)

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "Create")
}

func TestDocumentHandler_Create_UnknownHSN(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("line 1: %w: 9999", domain.ErrHSNNotFound))

	c, w := newRequest(http.MethodPost, "/api/v1/documents", `{"kind":"quotation","line_items":[{"description":"Widget","hsn_code":"9999","quantity":"1","unit_price":"10"}]}`)
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.Create(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "HSN_NOT_FOUND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "9999")
}

func TestDocumentHandler_GetByID_InvalidID(t *testing.T) {
	h, mockSvc := newDocumentHandler()

	c, w := newRequest(http.MethodGet, "/api/v1/documents/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeResponse(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "GetByID")
}

func TestDocumentHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()
	mockSvc.On("GetByID", mock.Anything, mock.Anything, docID).Return(nil, domain.ErrDocumentNotFound)

	c, w := newRequest(http.MethodGet, "/api/v1/documents/"+docID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", decodeResponse(t, w).Error.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_List_CreatedByMe(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	tenantID, userID := uuid.New(), uuid.New()

	docs := []domain.Document{{ID: uuid.New(), Kind: domain.KindBooking, Status: domain.StatusPending}}
	mockSvc.On("List", mock.Anything, mock.Anything, mock.MatchedBy(func(f port.DocumentFilter) bool {
		return f.Kind == domain.KindBooking &&
			f.Status == domain.StatusPending &&
			f.CreatedBy != nil && *f.CreatedBy == userID &&
			f.From != nil && f.From.Format("2006-01-02") == "2025-01-01"
	}), 10, 5).Return(docs, 11, nil)

	c, w := newRequest(http.MethodGet, "/api/v1/documents?kind=booking&status=pending&created_by=me&from=2025-01-01&offset=10&limit=5", nil)
	setAuthContext(c, tenantID, userID, "member")

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 11, resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.Offset)
	assert.Equal(t, 5, resp.Meta.Limit)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_List_InvalidFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"unknown kind", "kind=invoice", "INVALID_DOCUMENT_KIND"},
		{"bad creator", "created_by=someone", "INVALID_REQUEST"},
		{"bad from", "from=yesterday", "INVALID_REQUEST"},
		{"to before from", "from=2025-02-01&to=2025-01-01", "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newDocumentHandler()

			c, w := newRequest(http.MethodGet, "/api/v1/documents?"+tt.query, nil)
			setAuthContext(c, uuid.New(), uuid.New(), "member")

			h.List(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decodeResponse(t, w).Error.Code)
			mockSvc.AssertNotCalled(t, "List")
		})
	}
}

func TestDocumentHandler_Transition_Success(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()
	version := int64(3)

	doc := &domain.Document{ID: docID, Kind: domain.KindQuotation, Status: domain.StatusSent, Version: 4}
	mockSvc.On("Transition", mock.Anything, mock.Anything, docID, service.TransitionInput{
		Target:          domain.StatusSent,
		ExpectedVersion: &version,
	}).Return(doc, nil)

	c, w := newRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/transitions", `{"target_status":"sent","expected_version":3}`)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "manager")

	h.Transition(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "sent", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Transition_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid transition", fmt.Errorf("%w: draft -> paid", domain.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION"},
		{"stale version", domain.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newDocumentHandler()
			docID := uuid.New()
			mockSvc.On("Transition", mock.Anything, mock.Anything, docID, mock.Anything).Return(nil, tt.err)

			c, w := newRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/transitions", `{"target_status":"paid"}`)
			c.Params = gin.Params{{Key: "id", Value: docID.String()}}
			setAuthContext(c, uuid.New(), uuid.New(), "finance")

			h.Transition(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestDocumentHandler_Transition_MissingTarget(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()

	c, w := newRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/transitions", `{"comment":"no target"}`)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "finance")

	h.Transition(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Transition")
}

func TestDocumentHandler_AllowedTransitions_EmptyList(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()
	mockSvc.On("AllowedTransitions", mock.Anything, mock.Anything, docID).Return(nil, nil)

	c, w := newRequest(http.MethodGet, "/api/v1/documents/"+docID.String()+"/transitions", nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.AllowedTransitions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decodeResponse(t, w).Data)
}

func TestDocumentHandler_Approve_WithoutBody(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()

	doc := &domain.Document{ID: docID, Kind: domain.KindExpense, Status: domain.StatusInReview, Version: 5}
	mockSvc.On("ApproveStep", mock.Anything, mock.Anything, docID, service.ApproveInput{}).Return(doc, nil)

	c, w := newRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "manager")

	h.Approve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Approve_NotCurrentApprover(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()
	mockSvc.On("ApproveStep", mock.Anything, mock.Anything, docID, service.ApproveInput{Comment: "ok"}).
		Return(nil, domain.ErrForbidden)

	c, w := newRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/approve", `{"comment":"ok"}`)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "manager")

	h.Approve(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Derive_Created(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	sourceID := uuid.New()

	derived := &domain.Document{ID: uuid.New(), Kind: domain.KindEInvoice, Status: domain.StatusDraft, SourceDocumentID: &sourceID}
	mockSvc.On("Derive", mock.Anything, mock.Anything, sourceID, service.DeriveInput{Kind: domain.KindEInvoice}).Return(derived, nil)

	c, w := newRequest(http.MethodPost, "/api/v1/documents/"+sourceID.String()+"/derive", `{"kind":"einvoice"}`)
	c.Params = gin.Params{{Key: "id", Value: sourceID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "finance")

	h.Derive(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Derive_BelowThreshold(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	sourceID := uuid.New()
	mockSvc.On("Derive", mock.Anything, mock.Anything, sourceID, mock.Anything).
		Return(nil, fmt.Errorf("%w: 1180.00 < 50000.00", domain.ErrBelowEWayBillThreshold))

	c, w := newRequest(http.MethodPost, "/api/v1/documents/"+sourceID.String()+"/derive", `{"kind":"ewaybill"}`)
	c.Params = gin.Params{{Key: "id", Value: sourceID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "finance")

	h.Derive(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "BELOW_EWAY_BILL_THRESHOLD", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "50000.00")
}

func TestDocumentHandler_Delete_Locked(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()
	mockSvc.On("Delete", mock.Anything, mock.Anything, docID).Return(domain.ErrDocumentLocked)

	c, w := newRequest(http.MethodDelete, "/api/v1/documents/"+docID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DOCUMENT_LOCKED", decodeResponse(t, w).Error.Code)
}

func TestDocumentHandler_Delete_Success(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()
	mockSvc.On("Delete", mock.Anything, mock.Anything, docID).Return(nil)

	c, w := newRequest(http.MethodDelete, "/api/v1/documents/"+docID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_RecomputeTotals(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()

	doc := &domain.Document{ID: docID, Kind: domain.KindQuotation, Status: domain.StatusDraft, Version: 2}
	mockSvc.On("RecomputeTotals", mock.Anything, mock.Anything, docID, mock.MatchedBy(func(in service.RecomputeTotalsInput) bool {
		return len(in.Lines) == 2 && in.Discount.String() == "50"
	})).Return(doc, nil)

	c, w := newRequest(http.MethodPut, "/api/v1/documents/"+docID.String()+"/lines",
		`{"discount":"50","line_items":[{"description":"A","quantity":"2","unit_price":"100","tax_rate":"18"},{"description":"B","quantity":"1","unit_price":"300","tax_rate":"12"}]}`)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.RecomputeTotals(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_History(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	docID := uuid.New()

	entries := []domain.DocumentAuditEntry{{ID: uuid.New(), DocumentID: docID}}
	mockSvc.On("History", mock.Anything, mock.Anything, docID, 0, 20).Return(entries, 1, nil)

	c, w := newRequest(http.MethodGet, "/api/v1/documents/"+docID.String()+"/history", nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	mockSvc.AssertExpectations(t)
}
