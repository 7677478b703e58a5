package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"erpdesk/internal/config"
	"erpdesk/internal/domain"
	"erpdesk/internal/gst"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/port"
	"erpdesk/internal/tax"
)

// eWayBillValidity is the validity granted to an e-way bill when it is
// generated without an explicit valid_until.
const eWayBillValidity = 24 * time.Hour

// LineInput is one line item as submitted by a client. A nil TaxRate is
// resolved from the HSN rate table.
type LineInput struct {
	Description string           `json:"description" binding:"required"`
	HSNCode     string           `json:"hsn_code"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	CessRate    *decimal.Decimal `json:"cess_rate"`
}

// CreateDocumentInput is the DTO for creating a document.
type CreateDocumentInput struct {
	Kind          domain.DocumentKind   `json:"kind" binding:"required"`
	Title         string                `json:"title"`
	Status        domain.DocumentStatus `json:"status"`
	SupplyType    domain.SupplyType     `json:"supply_type"`
	Export        bool                  `json:"export"`
	SellerGSTIN   string                `json:"seller_gstin"`
	BuyerGSTIN    string                `json:"buyer_gstin"`
	PlaceOfSupply string                `json:"place_of_supply"`
	Currency      string                `json:"currency"`
	Discount      decimal.Decimal       `json:"discount"`
	Lines         []LineInput           `json:"line_items"`
	Approvers     []uuid.UUID           `json:"approvers"`
	ValidUntil    *time.Time            `json:"valid_until"`
}

// RecomputeTotalsInput replaces a document's line items and discount.
type RecomputeTotalsInput struct {
	Lines           []LineInput       `json:"line_items"`
	Discount        decimal.Decimal   `json:"discount"`
	SupplyType      domain.SupplyType `json:"supply_type"`
	ExpectedVersion *int64            `json:"expected_version"`
}

// TransitionInput requests a status change.
type TransitionInput struct {
	Target          domain.DocumentStatus `json:"target_status" binding:"required"`
	Comment         string                `json:"comment"`
	ExpectedVersion *int64                `json:"expected_version"`
}

// ApproveInput records the current approver's approval.
type ApproveInput struct {
	Comment         string `json:"comment"`
	ExpectedVersion *int64 `json:"expected_version"`
}

// DeriveInput creates a downstream document from an existing one.
type DeriveInput struct {
	Kind       domain.DocumentKind `json:"kind" binding:"required"`
	Title      string              `json:"title"`
	ValidUntil *time.Time          `json:"valid_until"`
}

// PreviewInput computes totals without persisting anything.
type PreviewInput struct {
	Lines      []LineInput       `json:"line_items"`
	Discount   decimal.Decimal   `json:"discount"`
	SupplyType domain.SupplyType `json:"supply_type" binding:"required"`
}

// DocumentService defines the document lifecycle contract.
type DocumentService interface {
	Create(ctx context.Context, actor lifecycle.Actor, input CreateDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, actor lifecycle.Actor, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error)
	RecomputeTotals(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input RecomputeTotalsInput) (*domain.Document, error)
	Transition(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input TransitionInput) (*domain.Document, error)
	ApproveStep(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input ApproveInput) (*domain.Document, error)
	AllowedTransitions(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) ([]domain.DocumentStatus, error)
	Derive(ctx context.Context, actor lifecycle.Actor, sourceID uuid.UUID, input DeriveInput) (*domain.Document, error)
	Delete(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) error
	History(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error)
	PreviewTotals(ctx context.Context, input PreviewInput) (*tax.Result, error)
}

// DocumentConfig carries the settings DocumentService reads.
type DocumentConfig struct {
	Tax      config.TaxConfig
	Workflow config.WorkflowConfig
}

type documentService struct {
	docRepo    port.DocumentRepository
	seq        port.SequenceGenerator
	auditRepo  port.DocumentAuditRepository
	userRepo   port.UserRepository
	tenantRepo port.TenantRepository
	hsnRepo    port.HSNRepository
	machine    *lifecycle.Machine
	notifier   *Notifier
	cfg        DocumentConfig
	log        zerolog.Logger
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	seq port.SequenceGenerator,
	auditRepo port.DocumentAuditRepository,
	userRepo port.UserRepository,
	tenantRepo port.TenantRepository,
	hsnRepo port.HSNRepository,
	machine *lifecycle.Machine,
	notifier *Notifier,
	cfg DocumentConfig,
	log zerolog.Logger,
) DocumentService {
	return &documentService{
		docRepo:    docRepo,
		seq:        seq,
		auditRepo:  auditRepo,
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		hsnRepo:    hsnRepo,
		machine:    machine,
		notifier:   notifier,
		cfg:        cfg,
		log:        log,
	}
}

// audit records a document mutation in the audit log. Failures are logged but never block business logic.
func (s *documentService) audit(ctx context.Context, tenantID, docID uuid.UUID, userID uuid.UUID, action domain.AuditAction, changes interface{}) {
	if s.auditRepo == nil {
		return
	}
	raw := json.RawMessage("{}")
	if changes != nil {
		if b, err := json.Marshal(changes); err == nil {
			raw = b
		}
	}
	entry := &domain.DocumentAuditEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		DocumentID: docID,
		Action:     string(action),
		Changes:    raw,
	}
	if userID != uuid.Nil {
		entry.UserID = &userID
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Str("action", string(action)).
			Str("document_id", docID.String()).
			Msg("documentService.audit: failed to write audit entry")
	}
}

func (s *documentService) Create(ctx context.Context, actor lifecycle.Actor, input CreateDocumentInput) (*domain.Document, error) {
	if actor.Role == domain.RoleSystem {
		return nil, domain.ErrForbidden
	}
	doc, err := s.build(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, doc); err != nil {
		return nil, err
	}

	s.audit(ctx, doc.TenantID, doc.ID, actor.UserID, domain.AuditDocumentCreated, map[string]interface{}{
		"kind": doc.Kind, "code": doc.Code, "status": doc.Status, "grand_total": doc.Totals.GrandTotal,
	})
	s.notifier.Publish(domain.EventDocumentCreated, doc, actor.UserID)

	s.log.Info().
		Str("document_id", doc.ID.String()).
		Str("code", doc.Code).
		Str("tenant_id", doc.TenantID.String()).
		Msg("documentService.Create: document created")
	return doc, nil
}

// build validates input and assembles a new, unsaved document.
func (s *documentService) build(ctx context.Context, actor lifecycle.Actor, input CreateDocumentInput) (*domain.Document, error) {
	status, err := lifecycle.InitialStatus(input.Kind, input.Status)
	if err != nil {
		return nil, err
	}

	sellerGSTIN := gst.NormalizeGSTIN(input.SellerGSTIN)
	buyerGSTIN := gst.NormalizeGSTIN(input.BuyerGSTIN)
	if err := gst.ValidateGSTIN(sellerGSTIN); err != nil {
		return nil, err
	}
	if err := gst.ValidateGSTIN(buyerGSTIN); err != nil {
		return nil, err
	}

	supply, placeOfSupply, err := s.resolveSupplyType(ctx, actor.TenantID, input.SupplyType, input.Export, sellerGSTIN, strings.TrimSpace(input.PlaceOfSupply))
	if err != nil {
		return nil, err
	}

	approvers, err := s.validateApprovers(ctx, actor, input.Kind, input.Approvers)
	if err != nil {
		return nil, err
	}

	result, err := s.computeTotals(ctx, input.Lines, input.Discount, supply)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.cfg.Tax.Currency
	}

	now := s.machine.Now()
	code, err := s.seq.Next(ctx, actor.TenantID, input.Kind, now.Year())
	if err != nil {
		return nil, fmt.Errorf("allocating document code: %w", err)
	}

	return &domain.Document{
		ID:            uuid.New(),
		TenantID:      actor.TenantID,
		Kind:          input.Kind,
		Code:          code,
		Title:         strings.TrimSpace(input.Title),
		Status:        status,
		Version:       1,
		SupplyType:    supply,
		SellerGSTIN:   sellerGSTIN,
		BuyerGSTIN:    buyerGSTIN,
		PlaceOfSupply: placeOfSupply,
		Currency:      currency,
		Discount:      tax.Round(input.Discount),
		LineItems:     result.Lines,
		Totals:        result.Totals,
		Approvers:     approvers,
		ApprovalSteps: domain.ApprovalSteps{},
		ValidUntil:    input.ValidUntil,
		CreatedBy:     actor.UserID,
		UpdatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *documentService) insert(ctx context.Context, doc *domain.Document) error {
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

// resolveSupplyType honours an explicit supply type and otherwise derives it
// from the seller registration (or the tenant's state) and the place of supply.
func (s *documentService) resolveSupplyType(ctx context.Context, tenantID uuid.UUID, requested domain.SupplyType, export bool, sellerGSTIN, placeOfSupply string) (domain.SupplyType, string, error) {
	if placeOfSupply != "" && !gst.IsStateCode(placeOfSupply) {
		return "", "", fmt.Errorf("%w: unknown place of supply %q", domain.ErrInvalidSupplyType, placeOfSupply)
	}
	if requested != "" {
		if !domain.ValidSupplyTypes[requested] {
			return "", "", fmt.Errorf("%w: %q", domain.ErrInvalidSupplyType, requested)
		}
		return requested, placeOfSupply, nil
	}
	if export {
		return domain.SupplyExport, placeOfSupply, nil
	}

	if sellerGSTIN != "" {
		if placeOfSupply == "" {
			code, err := gst.StateCode(sellerGSTIN)
			if err != nil {
				return "", "", err
			}
			placeOfSupply = code
		}
		supply, err := gst.DeriveSupplyType(sellerGSTIN, placeOfSupply, false)
		if err != nil {
			return "", "", err
		}
		return supply, placeOfSupply, nil
	}

	origin := s.tenantStateCode(ctx, tenantID)
	if placeOfSupply == "" {
		placeOfSupply = origin
	}
	if origin == placeOfSupply {
		return domain.SupplyIntrastate, placeOfSupply, nil
	}
	return domain.SupplyInterstate, placeOfSupply, nil
}

func (s *documentService) tenantStateCode(ctx context.Context, tenantID uuid.UUID) string {
	if s.tenantRepo != nil {
		tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
		if err == nil && tenant.StateCode != "" {
			return tenant.StateCode
		}
		if err != nil {
			s.log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("documentService: tenant lookup failed, using default state")
		}
	}
	return s.cfg.Tax.DefaultStateCode
}

// validateApprovers checks that every approver is an active user of the
// tenant holding an approver role, listed once, and not the creator. Kinds
// with an approval chain need at least one approver.
func (s *documentService) validateApprovers(ctx context.Context, actor lifecycle.Actor, kind domain.DocumentKind, ids []uuid.UUID) (domain.ApproverList, error) {
	table, err := lifecycle.TableFor(kind)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		if table.TracksApproval {
			return nil, fmt.Errorf("%w: %s documents need an approval chain", domain.ErrNoApprovers, kind)
		}
		return domain.ApproverList{}, nil
	}
	tenantID := actor.TenantID
	if !table.TracksApproval {
		return nil, fmt.Errorf("%w: %s documents have no approval chain", domain.ErrInvalidApprover, kind)
	}
	if max := s.cfg.Workflow.MaxApprovers; max > 0 && len(ids) > max {
		return nil, fmt.Errorf("%w: at most %d approvers allowed", domain.ErrInvalidApprover, max)
	}

	allowed := make(map[domain.UserRole]bool, len(s.cfg.Workflow.ApproverRoles))
	for _, r := range s.cfg.Workflow.ApproverRoles {
		allowed[domain.UserRole(r)] = true
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	out := make(domain.ApproverList, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s listed twice", domain.ErrInvalidApprover, id)
		}
		seen[id] = true
		if id == actor.UserID {
			return nil, fmt.Errorf("%w: the creator cannot approve their own document", domain.ErrInvalidApprover)
		}

		user, err := s.userRepo.GetByID(ctx, tenantID, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s is not a member of this tenant", domain.ErrInvalidApprover, id)
			}
			return nil, fmt.Errorf("looking up approver: %w", err)
		}
		if !user.IsActive || (len(allowed) > 0 && !allowed[user.Role]) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidApprover, user.Email)
		}
		out = append(out, id)
	}
	return out, nil
}

// computeTotals resolves missing rates from the HSN table and runs the calculator.
func (s *documentService) computeTotals(ctx context.Context, lines []LineInput, discount decimal.Decimal, supply domain.SupplyType) (*tax.Result, error) {
	items := make([]domain.LineItem, len(lines))
	for i, in := range lines {
		item := domain.LineItem{
			Description: strings.TrimSpace(in.Description),
			HSNCode:     strings.TrimSpace(in.HSNCode),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		}
		if in.TaxRate != nil {
			item.TaxRate = *in.TaxRate
		}
		if in.CessRate != nil {
			item.CessRate = *in.CessRate
		}
		if (in.TaxRate == nil || in.CessRate == nil) && item.HSNCode != "" && s.hsnRepo != nil {
			rate, err := s.hsnRepo.LookupRate(ctx, item.HSNCode)
			if err != nil {
				if in.TaxRate == nil {
					return nil, fmt.Errorf("line %d: %w", i+1, err)
				}
			} else {
				if in.TaxRate == nil {
					item.TaxRate = rate.Rate
				}
				if in.CessRate == nil {
					item.CessRate = rate.CessRate
				}
			}
		}
		items[i] = item
	}
	return tax.ComputeDocumentTotals(items, discount, supply)
}

func (s *documentService) PreviewTotals(ctx context.Context, input PreviewInput) (*tax.Result, error) {
	return s.computeTotals(ctx, input.Lines, input.Discount, input.SupplyType)
}

func (s *documentService) GetByID(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, actor.TenantID, docID)
}

func (s *documentService) List(ctx context.Context, actor lifecycle.Actor, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	if filter.Kind != "" && !domain.ValidDocumentKinds[filter.Kind] {
		return nil, 0, domain.ErrInvalidDocumentKind
	}
	return s.docRepo.List(ctx, actor.TenantID, filter, offset, limit)
}

// canEdit allows the creator and every role above member to edit contents.
func canEdit(doc *domain.Document, actor lifecycle.Actor) bool {
	return lifecycle.Any(
		lifecycle.Creator(),
		lifecycle.Roles(domain.RoleManager, domain.RoleFinance, domain.RoleAdmin),
	)(doc, actor)
}

func (s *documentService) RecomputeTotals(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input RecomputeTotalsInput) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, docID)
	if err != nil {
		return nil, err
	}
	if !canEdit(doc, actor) {
		return nil, domain.ErrForbidden
	}

	supply := doc.SupplyType
	if input.SupplyType != "" {
		if !domain.ValidSupplyTypes[input.SupplyType] {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSupplyType, input.SupplyType)
		}
		supply = input.SupplyType
	}

	next, err := s.machine.Edit(doc, actor, lifecycle.TransitionOptions{ExpectedVersion: input.ExpectedVersion}, func(next *domain.Document) error {
		result, err := s.computeTotals(ctx, input.Lines, input.Discount, supply)
		if err != nil {
			return err
		}
		next.SupplyType = supply
		next.Discount = tax.Round(input.Discount)
		next.LineItems = result.Lines
		next.Totals = result.Totals
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.Update(ctx, next, doc.Version); err != nil {
		return nil, err
	}

	s.audit(ctx, next.TenantID, next.ID, actor.UserID, domain.AuditDocumentTotalsRecomputed, map[string]interface{}{
		"lines":           len(next.LineItems),
		"old_grand_total": doc.Totals.GrandTotal,
		"new_grand_total": next.Totals.GrandTotal,
		"supply_type":     next.SupplyType,
	})
	s.notifier.Publish(domain.EventDocumentUpdated, next, actor.UserID)
	return next, nil
}

func (s *documentService) Transition(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input TransitionInput) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, docID)
	if err != nil {
		return nil, err
	}

	next, err := s.machine.Transition(doc, input.Target, actor, lifecycle.TransitionOptions{
		Comment:         input.Comment,
		ExpectedVersion: input.ExpectedVersion,
	})
	if err != nil {
		return nil, err
	}
	s.assignIdentifiers(next)

	if err := s.docRepo.Update(ctx, next, doc.Version); err != nil {
		return nil, err
	}

	s.audit(ctx, next.TenantID, next.ID, actor.UserID, domain.AuditDocumentStatusChanged, map[string]interface{}{
		"from": doc.Status, "to": next.Status, "comment": input.Comment, "role": actor.Role,
	})
	s.notifier.Publish(domain.EventDocumentStatusChanged, next, actor.UserID)
	s.notifier.DocumentChanged(ctx, next)

	s.log.Info().
		Str("document_id", next.ID.String()).
		Str("code", next.Code).
		Str("from", string(doc.Status)).
		Str("to", string(next.Status)).
		Int64("version", next.Version).
		Msg("documentService.Transition: status changed")
	return next, nil
}

// assignIdentifiers stamps statutory identifiers issued on generation.
func (s *documentService) assignIdentifiers(doc *domain.Document) {
	if doc.Status != domain.StatusGenerated {
		return
	}
	switch doc.Kind {
	case domain.KindEInvoice:
		if doc.IRN == "" {
			doc.IRN = gst.ComputeIRN(doc.SellerGSTIN, "INV", doc.Code, gst.FinancialYear(doc.UpdatedAt))
		}
	case domain.KindEWayBill:
		if doc.EWayBillNumber == "" {
			doc.EWayBillNumber = gst.EWayBillNumber(doc.TenantID.String() + "/" + doc.Code)
		}
		if doc.ValidUntil == nil {
			until := doc.UpdatedAt.Add(eWayBillValidity)
			doc.ValidUntil = &until
		}
	}
}

func (s *documentService) ApproveStep(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, input ApproveInput) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, docID)
	if err != nil {
		return nil, err
	}

	next, err := s.machine.ApproveStep(doc, actor, lifecycle.TransitionOptions{
		Comment:         input.Comment,
		ExpectedVersion: input.ExpectedVersion,
	})
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.Update(ctx, next, doc.Version); err != nil {
		return nil, err
	}

	if next.Status == doc.Status {
		s.audit(ctx, next.TenantID, next.ID, actor.UserID, domain.AuditDocumentStepApproved, map[string]interface{}{
			"comment": input.Comment,
		})
		s.notifier.Publish(domain.EventDocumentUpdated, next, actor.UserID)
	} else {
		s.audit(ctx, next.TenantID, next.ID, actor.UserID, domain.AuditDocumentStatusChanged, map[string]interface{}{
			"from": doc.Status, "to": next.Status, "comment": input.Comment, "role": actor.Role,
		})
		s.notifier.Publish(domain.EventDocumentStatusChanged, next, actor.UserID)
	}
	s.notifier.DocumentChanged(ctx, next)
	return next, nil
}

func (s *documentService) AllowedTransitions(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) ([]domain.DocumentStatus, error) {
	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, docID)
	if err != nil {
		return nil, err
	}
	return s.machine.AllowedTargets(doc, actor), nil
}

// derivations lists which source statuses may spawn which document kinds.
var derivations = map[domain.DocumentKind]map[domain.DocumentKind][]domain.DocumentStatus{
	domain.KindQuotation: {
		domain.KindEInvoice: {domain.StatusAccepted},
	},
	domain.KindEInvoice: {
		domain.KindEWayBill: {domain.StatusGenerated, domain.StatusUploaded},
	},
}

func derivable(source *domain.Document, target domain.DocumentKind) bool {
	for _, st := range derivations[source.Kind][target] {
		if st == source.Status {
			return true
		}
	}
	return false
}

func (s *documentService) Derive(ctx context.Context, actor lifecycle.Actor, sourceID uuid.UUID, input DeriveInput) (*domain.Document, error) {
	if !lifecycle.Roles(domain.RoleManager, domain.RoleFinance, domain.RoleAdmin)(nil, actor) {
		return nil, domain.ErrForbidden
	}
	source, err := s.docRepo.GetByID(ctx, actor.TenantID, sourceID)
	if err != nil {
		return nil, err
	}
	if !derivable(source, input.Kind) {
		return nil, fmt.Errorf("%w: %s in status %s cannot produce %s",
			domain.ErrDerivationNotAllowed, source.Kind, source.Status, input.Kind)
	}
	refs, err := s.docRepo.CountReferences(ctx, actor.TenantID, source.ID)
	if err != nil {
		return nil, err
	}
	if refs > 0 {
		return nil, fmt.Errorf("%w: %s was already derived", domain.ErrDerivationNotAllowed, source.Code)
	}
	if input.Kind == domain.KindEWayBill && source.Totals.GrandTotal.LessThan(s.cfg.Tax.EWayBillThreshold) {
		return nil, fmt.Errorf("%w: %s < %s", domain.ErrBelowEWayBillThreshold,
			source.Totals.GrandTotal.StringFixed(2), s.cfg.Tax.EWayBillThreshold.StringFixed(2))
	}

	title := input.Title
	if title == "" {
		title = source.Title
	}
	now := s.machine.Now()
	code, err := s.seq.Next(ctx, actor.TenantID, input.Kind, now.Year())
	if err != nil {
		return nil, fmt.Errorf("allocating document code: %w", err)
	}

	srcID := source.ID
	doc := source.Clone()
	doc.ID = uuid.New()
	doc.Kind = input.Kind
	doc.Code = code
	doc.Title = title
	doc.Status = domain.StatusDraft
	doc.Version = 1
	doc.Approvers = domain.ApproverList{}
	doc.ApprovalSteps = domain.ApprovalSteps{}
	doc.SourceDocumentID = &srcID
	doc.IRN = ""
	doc.EWayBillNumber = ""
	doc.ValidUntil = input.ValidUntil
	doc.StatusChangedAt = nil
	doc.CreatedBy = actor.UserID
	doc.UpdatedBy = actor.UserID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if err := s.insert(ctx, doc); err != nil {
		return nil, err
	}

	s.audit(ctx, source.TenantID, source.ID, actor.UserID, domain.AuditDocumentDerived, map[string]interface{}{
		"derived_id": doc.ID, "derived_code": doc.Code, "kind": doc.Kind,
	})
	s.audit(ctx, doc.TenantID, doc.ID, actor.UserID, domain.AuditDocumentCreated, map[string]interface{}{
		"kind": doc.Kind, "code": doc.Code, "status": doc.Status, "source_code": source.Code,
	})
	s.notifier.Publish(domain.EventDocumentCreated, doc, actor.UserID)
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, docID)
	if err != nil {
		return err
	}
	if !lifecycle.Any(lifecycle.Creator(), lifecycle.Roles(domain.RoleAdmin))(doc, actor) {
		return domain.ErrForbidden
	}
	table, err := lifecycle.TableFor(doc.Kind)
	if err != nil {
		return err
	}
	initial := false
	for _, st := range table.Initial {
		if st == doc.Status {
			initial = true
		}
	}
	if !initial {
		return fmt.Errorf("%w: only documents that have not left %s can be deleted", domain.ErrDocumentLocked, table.Initial[0])
	}

	refs, err := s.docRepo.CountReferences(ctx, actor.TenantID, doc.ID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrDocumentReferenced
	}
	if err := s.docRepo.Delete(ctx, actor.TenantID, doc.ID); err != nil {
		return err
	}

	s.audit(ctx, doc.TenantID, doc.ID, actor.UserID, domain.AuditDocumentDeleted, map[string]interface{}{
		"code": doc.Code, "kind": doc.Kind,
	})
	s.notifier.Publish(domain.EventDocumentDeleted, doc, actor.UserID)
	return nil
}

func (s *documentService) History(ctx context.Context, actor lifecycle.Actor, docID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error) {
	return s.auditRepo.ListByDocument(ctx, actor.TenantID, docID, offset, limit)
}
