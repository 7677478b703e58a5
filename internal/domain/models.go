package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenant represents an isolated organizational tenant.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	StateCode string    `db:"state_code" json:"state_code"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User represents an authenticated user belonging to a tenant.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LineItem is one priced row of a document. Computed fields are owned by the
// tax calculator and overwritten on every recomputation.
type LineItem struct {
	Description string          `json:"description"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	CessRate    decimal.Decimal `json:"cess_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	CessAmount  decimal.Decimal `json:"cess_amount"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
}

// Totals are the document-level amounts derived from line items.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	TaxTotal     decimal.Decimal `json:"tax_total"`
	CGSTTotal    decimal.Decimal `json:"cgst_total"`
	SGSTTotal    decimal.Decimal `json:"sgst_total"`
	IGSTTotal    decimal.Decimal `json:"igst_total"`
	CessTotal    decimal.Decimal `json:"cess_total"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
}

// ApprovalStep is one immutable entry of a document's approval log. The
// effective state of a step is its most recent entry.
type ApprovalStep struct {
	StepNumber int                `json:"step_number"`
	ApproverID uuid.UUID          `json:"approver_id"`
	Status     ApprovalStepStatus `json:"status"`
	Comment    string             `json:"comment,omitempty"`
	ActedBy    *uuid.UUID         `json:"acted_by,omitempty"`
	ActedAt    *time.Time         `json:"acted_at,omitempty"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// Document is a business document (expense report, quotation, e-invoice,
// e-way bill or booking) moving through its kind's lifecycle.
type Document struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	TenantID         uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	Kind             DocumentKind    `db:"kind" json:"kind"`
	Code             string          `db:"code" json:"code"`
	Title            string          `db:"title" json:"title"`
	Status           DocumentStatus  `db:"status" json:"status"`
	Version          int64           `db:"version" json:"version"`
	SupplyType       SupplyType      `db:"supply_type" json:"supply_type"`
	SellerGSTIN      string          `db:"seller_gstin" json:"seller_gstin"`
	BuyerGSTIN       string          `db:"buyer_gstin" json:"buyer_gstin"`
	PlaceOfSupply    string          `db:"place_of_supply" json:"place_of_supply"`
	Currency         string          `db:"currency" json:"currency"`
	Discount         decimal.Decimal `db:"discount" json:"discount"`
	LineItems        LineItems       `db:"line_items" json:"line_items"`
	Totals           Totals          `db:"totals" json:"totals"`
	Approvers        ApproverList    `db:"approvers" json:"approvers"`
	ApprovalSteps    ApprovalSteps   `db:"approval_steps" json:"approval_steps"`
	SourceDocumentID *uuid.UUID      `db:"source_document_id" json:"source_document_id,omitempty"`
	IRN              string          `db:"irn" json:"irn,omitempty"`
	EWayBillNumber   string          `db:"eway_bill_number" json:"eway_bill_number,omitempty"`
	ValidUntil       *time.Time      `db:"valid_until" json:"valid_until,omitempty"`
	StatusChangedAt  *time.Time      `db:"status_changed_at" json:"status_changed_at,omitempty"`
	CreatedBy        uuid.UUID       `db:"created_by" json:"created_by"`
	UpdatedBy        uuid.UUID       `db:"updated_by" json:"updated_by"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	cp := *d
	cp.LineItems = append(LineItems(nil), d.LineItems...)
	cp.Approvers = append(ApproverList(nil), d.Approvers...)
	cp.ApprovalSteps = nil
	if d.ApprovalSteps != nil {
		cp.ApprovalSteps = make(ApprovalSteps, len(d.ApprovalSteps))
	}
	for i := range d.ApprovalSteps {
		step := d.ApprovalSteps[i]
		if step.ActedBy != nil {
			by := *step.ActedBy
			step.ActedBy = &by
		}
		if step.ActedAt != nil {
			at := *step.ActedAt
			step.ActedAt = &at
		}
		cp.ApprovalSteps[i] = step
	}
	if d.SourceDocumentID != nil {
		src := *d.SourceDocumentID
		cp.SourceDocumentID = &src
	}
	if d.ValidUntil != nil {
		v := *d.ValidUntil
		cp.ValidUntil = &v
	}
	if d.StatusChangedAt != nil {
		v := *d.StatusChangedAt
		cp.StatusChangedAt = &v
	}
	return &cp
}

// DocumentAuditEntry records a single mutation to a document.
type DocumentAuditEntry struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	TenantID   uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	DocumentID uuid.UUID       `db:"document_id" json:"document_id"`
	UserID     *uuid.UUID      `db:"user_id" json:"user_id"`
	Action     string          `db:"action" json:"action"`
	Changes    json.RawMessage `db:"changes" json:"changes"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// LineItems is stored as a JSONB column.
type LineItems []LineItem

// Value implements driver.Valuer.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *LineItems) Scan(src interface{}) error { return scanJSON(src, l) }

// ApprovalSteps is stored as a JSONB column.
type ApprovalSteps []ApprovalStep

// Value implements driver.Valuer.
func (s ApprovalSteps) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *ApprovalSteps) Scan(src interface{}) error { return scanJSON(src, s) }

// ApproverList is the ordered approver chain, stored as a JSONB column.
type ApproverList []uuid.UUID

// Value implements driver.Valuer.
func (a ApproverList) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *ApproverList) Scan(src interface{}) error { return scanJSON(src, a) }

// Equal reports whether every amount in t equals the one in o.
func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) &&
		t.Discount.Equal(o.Discount) &&
		t.TaxableValue.Equal(o.TaxableValue) &&
		t.TaxTotal.Equal(o.TaxTotal) &&
		t.CGSTTotal.Equal(o.CGSTTotal) &&
		t.SGSTTotal.Equal(o.SGSTTotal) &&
		t.IGSTTotal.Equal(o.IGSTTotal) &&
		t.CessTotal.Equal(o.CessTotal) &&
		t.GrandTotal.Equal(o.GrandTotal)
}

// Value implements driver.Valuer.
func (t Totals) Value() (driver.Value, error) { return json.Marshal(t) }

// Scan implements sql.Scanner.
func (t *Totals) Scan(src interface{}) error { return scanJSON(src, t) }

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

// HSNRate is the GST rate registered for an HSN or SAC code.
type HSNRate struct {
	Code        string          `db:"code" json:"code"`
	Description string          `db:"description" json:"description"`
	Rate        decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	CessRate    decimal.Decimal `db:"cess_rate" json:"cess_rate"`
}

// StatusCount is the number of documents of one kind in one status.
type StatusCount struct {
	Kind       DocumentKind    `db:"kind" json:"kind"`
	Status     DocumentStatus  `db:"status" json:"status"`
	Count      int             `db:"count" json:"count"`
	GrandTotal decimal.Decimal `db:"grand_total" json:"grand_total"`
}

// Stats summarizes a tenant's documents.
type Stats struct {
	TotalDocuments int           `json:"total_documents"`
	ByStatus       []StatusCount `json:"by_status"`
}

// EventType names a realtime document event.
type EventType string

const (
	EventDocumentCreated       EventType = "document.created"
	EventDocumentUpdated       EventType = "document.updated"
	EventDocumentStatusChanged EventType = "document.status_changed"
	EventDocumentDeleted       EventType = "document.deleted"
)

// DocumentEvent is broadcast to a tenant's connected clients after a
// document change has been saved.
type DocumentEvent struct {
	Type       EventType      `json:"type"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	DocumentID uuid.UUID      `json:"document_id"`
	Kind       DocumentKind   `json:"kind"`
	Code       string         `json:"code"`
	Status     DocumentStatus `json:"status"`
	Version    int64          `json:"version"`
	ActorID    uuid.UUID      `json:"actor_id"`
	At         time.Time      `json:"at"`
}

// NewDocumentEvent builds an event from a saved document snapshot.
func NewDocumentEvent(t EventType, doc *Document, actorID uuid.UUID) DocumentEvent {
	return DocumentEvent{
		Type:       t,
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Kind:       doc.Kind,
		Code:       doc.Code,
		Status:     doc.Status,
		Version:    doc.Version,
		ActorID:    actorID,
		At:         doc.UpdatedAt,
	}
}
