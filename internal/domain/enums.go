package domain

// UserRole defines the role hierarchy within a tenant.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleFinance UserRole = "finance"
	RoleMember  UserRole = "member"
	// RoleSystem is never assigned to a user; background jobs act with it.
	RoleSystem UserRole = "system"
)

// AssignableRoles lists the roles a user account may hold.
var AssignableRoles = map[UserRole]bool{
	RoleAdmin:   true,
	RoleManager: true,
	RoleFinance: true,
	RoleMember:  true,
}

// DocumentKind identifies which lifecycle a document follows.
type DocumentKind string

const (
	KindExpense   DocumentKind = "expense"
	KindQuotation DocumentKind = "quotation"
	KindEInvoice  DocumentKind = "einvoice"
	KindEWayBill  DocumentKind = "ewaybill"
	KindBooking   DocumentKind = "booking"
)

// ValidDocumentKinds is the closed set of document kinds.
var ValidDocumentKinds = map[DocumentKind]bool{
	KindExpense:   true,
	KindQuotation: true,
	KindEInvoice:  true,
	KindEWayBill:  true,
	KindBooking:   true,
}

// CodePrefix returns the business code prefix for a document kind (e.g. EXP).
func (k DocumentKind) CodePrefix() string {
	switch k {
	case KindExpense:
		return "EXP"
	case KindQuotation:
		return "QUO"
	case KindEInvoice:
		return "INV"
	case KindEWayBill:
		return "EWB"
	case KindBooking:
		return "BKG"
	default:
		return "DOC"
	}
}

// DocumentStatus is a lifecycle state. Which values are legal depends on the kind.
type DocumentStatus string

const (
	StatusDraft      DocumentStatus = "draft"
	StatusSubmitted  DocumentStatus = "submitted"
	StatusInReview   DocumentStatus = "in_review"
	StatusApproved   DocumentStatus = "approved"
	StatusRejected   DocumentStatus = "rejected"
	StatusPaid       DocumentStatus = "paid"
	StatusSent       DocumentStatus = "sent"
	StatusAccepted   DocumentStatus = "accepted"
	StatusExpired    DocumentStatus = "expired"
	StatusGenerated  DocumentStatus = "generated"
	StatusUploaded   DocumentStatus = "uploaded"
	StatusCancelled  DocumentStatus = "cancelled"
	StatusActive     DocumentStatus = "active"
	StatusPending    DocumentStatus = "pending"
	StatusConfirmed  DocumentStatus = "confirmed"
	StatusCheckedIn  DocumentStatus = "checked_in"
	StatusCheckedOut DocumentStatus = "checked_out"
	StatusNoShow     DocumentStatus = "no_show"
)

// SupplyType decides how GST is split between central, state and integrated tax.
type SupplyType string

const (
	SupplyIntrastate SupplyType = "intrastate"
	SupplyInterstate SupplyType = "interstate"
	SupplyExport     SupplyType = "export"
)

// ValidSupplyTypes is the closed set of supply types.
var ValidSupplyTypes = map[SupplyType]bool{
	SupplyIntrastate: true,
	SupplyInterstate: true,
	SupplyExport:     true,
}

// ApprovalStepStatus is the state recorded for one approval step.
type ApprovalStepStatus string

const (
	StepPending  ApprovalStepStatus = "pending"
	StepApproved ApprovalStepStatus = "approved"
	StepRejected ApprovalStepStatus = "rejected"
	StepSkipped  ApprovalStepStatus = "skipped"
)

// AuditAction represents the type of mutation recorded in the audit log.
type AuditAction string

const (
	AuditDocumentCreated          AuditAction = "document.created"
	AuditDocumentTotalsRecomputed AuditAction = "document.totals_recomputed"
	AuditDocumentStatusChanged    AuditAction = "document.status_changed"
	AuditDocumentStepApproved     AuditAction = "document.step_approved"
	AuditDocumentDerived          AuditAction = "document.derived"
	AuditDocumentDeleted          AuditAction = "document.deleted"
)
