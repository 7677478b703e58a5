package lifecycle

import "erpdesk/internal/domain"

// Edge is one allowed status change and the guard that authorizes it.
type Edge struct {
	To     domain.DocumentStatus
	Guard  Guard
	effect effect
}

// Table is the complete lifecycle of one document kind.
type Table struct {
	Kind           domain.DocumentKind
	Initial        []domain.DocumentStatus
	Edges          map[domain.DocumentStatus][]Edge
	TracksApproval bool
}

// Terminal reports whether status has no outgoing edges.
func (t *Table) Terminal(status domain.DocumentStatus) bool {
	return len(t.Edges[status]) == 0
}

// Knows reports whether status belongs to this kind.
func (t *Table) Knows(status domain.DocumentStatus) bool {
	for _, s := range t.Initial {
		if s == status {
			return true
		}
	}
	if _, ok := t.Edges[status]; ok {
		return true
	}
	for _, edges := range t.Edges {
		for _, e := range edges {
			if e.To == status {
				return true
			}
		}
	}
	return false
}

func (t *Table) edge(from, to domain.DocumentStatus) (Edge, bool) {
	for _, e := range t.Edges[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

var (
	staff    = Roles(domain.RoleMember, domain.RoleManager, domain.RoleFinance, domain.RoleAdmin)
	finance  = Roles(domain.RoleFinance, domain.RoleAdmin)
	owner    = Any(Creator(), Roles(domain.RoleManager, domain.RoleAdmin))
	expirers = Roles(domain.RoleSystem, domain.RoleAdmin)
)

var expenseTable = &Table{
	Kind:           domain.KindExpense,
	Initial:        []domain.DocumentStatus{domain.StatusDraft},
	TracksApproval: true,
	Edges: map[domain.DocumentStatus][]Edge{
		domain.StatusDraft: {
			{To: domain.StatusSubmitted, Guard: Any(Creator(), Roles(domain.RoleAdmin)), effect: requireApprovers},
		},
		domain.StatusSubmitted: {
			{To: domain.StatusInReview, Guard: Roles(domain.RoleManager, domain.RoleAdmin), effect: openReview},
		},
		domain.StatusInReview: {
			{To: domain.StatusApproved, Guard: CurrentApprover(), effect: approveFinalStep},
			{To: domain.StatusRejected, Guard: CurrentApprover(), effect: rejectReview},
		},
		domain.StatusApproved: {
			{To: domain.StatusPaid, Guard: finance},
		},
	},
}

var quotationTable = &Table{
	Kind:    domain.KindQuotation,
	Initial: []domain.DocumentStatus{domain.StatusDraft},
	Edges: map[domain.DocumentStatus][]Edge{
		domain.StatusDraft: {
			{To: domain.StatusSent, Guard: owner},
		},
		domain.StatusSent: {
			{To: domain.StatusAccepted, Guard: owner},
			{To: domain.StatusRejected, Guard: owner},
			{To: domain.StatusExpired, Guard: expirers},
		},
	},
}

var eInvoiceTable = &Table{
	Kind:    domain.KindEInvoice,
	Initial: []domain.DocumentStatus{domain.StatusDraft},
	Edges: map[domain.DocumentStatus][]Edge{
		domain.StatusDraft: {
			{To: domain.StatusGenerated, Guard: finance},
		},
		domain.StatusGenerated: {
			{To: domain.StatusUploaded, Guard: finance},
			{To: domain.StatusCancelled, Guard: finance},
		},
	},
}

var eWayBillTable = &Table{
	Kind:    domain.KindEWayBill,
	Initial: []domain.DocumentStatus{domain.StatusDraft},
	Edges: map[domain.DocumentStatus][]Edge{
		domain.StatusDraft: {
			{To: domain.StatusGenerated, Guard: finance},
		},
		domain.StatusGenerated: {
			{To: domain.StatusActive, Guard: finance},
			{To: domain.StatusCancelled, Guard: finance},
			{To: domain.StatusRejected, Guard: finance},
		},
		domain.StatusActive: {
			{To: domain.StatusCancelled, Guard: finance},
			{To: domain.StatusExpired, Guard: expirers},
		},
	},
}

var bookingTable = &Table{
	Kind:    domain.KindBooking,
	Initial: []domain.DocumentStatus{domain.StatusPending, domain.StatusConfirmed},
	Edges: map[domain.DocumentStatus][]Edge{
		domain.StatusPending: {
			{To: domain.StatusConfirmed, Guard: staff},
			{To: domain.StatusCheckedIn, Guard: staff},
			{To: domain.StatusCancelled, Guard: staff},
			{To: domain.StatusNoShow, Guard: Any(staff, Roles(domain.RoleSystem))},
		},
		domain.StatusConfirmed: {
			{To: domain.StatusCheckedIn, Guard: staff},
			{To: domain.StatusCancelled, Guard: staff},
			{To: domain.StatusNoShow, Guard: Any(staff, Roles(domain.RoleSystem))},
		},
		domain.StatusCheckedIn: {
			{To: domain.StatusCheckedOut, Guard: staff},
		},
	},
}

var tables = map[domain.DocumentKind]*Table{
	domain.KindExpense:   expenseTable,
	domain.KindQuotation: quotationTable,
	domain.KindEInvoice:  eInvoiceTable,
	domain.KindEWayBill:  eWayBillTable,
	domain.KindBooking:   bookingTable,
}

// TableFor returns the lifecycle table of a document kind.
func TableFor(kind domain.DocumentKind) (*Table, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, domain.ErrInvalidDocumentKind
	}
	return t, nil
}
