package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"erpdesk/internal/domain"
	"erpdesk/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	query := `INSERT INTO documents (
		id, tenant_id, kind, code, title, status, version,
		supply_type, seller_gstin, buyer_gstin, place_of_supply, currency,
		discount, line_items, totals, approvers, approval_steps,
		source_document_id, irn, eway_bill_number, valid_until, status_changed_at,
		created_by, updated_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, $14, $15, $16, $17,
		$18, $19, $20, $21, $22,
		$23, $24, $25, $26
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.TenantID, doc.Kind, doc.Code, doc.Title, doc.Status, doc.Version,
		doc.SupplyType, doc.SellerGSTIN, doc.BuyerGSTIN, doc.PlaceOfSupply, doc.Currency,
		doc.Discount, doc.LineItems, doc.Totals, doc.Approvers, doc.ApprovalSteps,
		doc.SourceDocumentID, doc.IRN, doc.EWayBillNumber, doc.ValidUntil, doc.StatusChangedAt,
		doc.CreatedBy, doc.UpdatedBy, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return createError(err)
	}
	return nil
}

// createError maps the single-derivation index violation to a domain error.
func createError(err error) error {
	if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "uq_documents_source") {
		return fmt.Errorf("%w: source document was already derived", domain.ErrDerivationNotAllowed)
	}
	return fmt.Errorf("documentRepo.Create: %w", err)
}

func (r *documentRepo) GetByID(ctx context.Context, tenantID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND tenant_id = $2", docID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

// whereClause builds the WHERE clause and positional args for a filter.
func whereClause(tenantID uuid.UUID, f port.DocumentFilter) (string, []interface{}) {
	conds := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CreatedBy != nil {
		add("created_by = $%d", *f.CreatedBy)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	return strings.Join(conds, " AND "), args
}

func (r *documentRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	where, args := whereClause(tenantID, filter)

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents WHERE "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT * FROM documents WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, n+1, n+2)
	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) Update(ctx context.Context, doc *domain.Document, expectedVersion int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			title = $1, status = $2, version = $3,
			supply_type = $4, seller_gstin = $5, buyer_gstin = $6, place_of_supply = $7,
			discount = $8, line_items = $9, totals = $10,
			approvers = $11, approval_steps = $12,
			irn = $13, eway_bill_number = $14, valid_until = $15, status_changed_at = $16,
			updated_by = $17, updated_at = $18
		 WHERE id = $19 AND tenant_id = $20 AND version = $21`,
		doc.Title, doc.Status, doc.Version,
		doc.SupplyType, doc.SellerGSTIN, doc.BuyerGSTIN, doc.PlaceOfSupply,
		doc.Discount, doc.LineItems, doc.Totals,
		doc.Approvers, doc.ApprovalSteps,
		doc.IRN, doc.EWayBillNumber, doc.ValidUntil, doc.StatusChangedAt,
		doc.UpdatedBy, doc.UpdatedAt,
		doc.ID, doc.TenantID, expectedVersion)
	if err != nil {
		return fmt.Errorf("documentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var exists bool
	err = r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1 AND tenant_id = $2)", doc.ID, doc.TenantID)
	if err != nil {
		return fmt.Errorf("documentRepo.Update exists: %w", err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	return fmt.Errorf("%w: %s is no longer at version %d", domain.ErrConcurrentModification, doc.Code, expectedVersion)
}

func (r *documentRepo) Delete(ctx context.Context, tenantID, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = $1 AND tenant_id = $2", docID, tenantID)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			return domain.ErrDocumentReferenced
		}
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) CountReferences(ctx context.Context, tenantID, docID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM documents WHERE tenant_id = $1 AND source_document_id = $2", tenantID, docID)
	if err != nil {
		return 0, fmt.Errorf("documentRepo.CountReferences: %w", err)
	}
	return n, nil
}

func (r *documentRepo) ListExpirable(ctx context.Context, now time.Time, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents
		 WHERE valid_until IS NOT NULL AND valid_until < $1
		   AND ((kind = 'ewaybill' AND status = 'active') OR (kind = 'quotation' AND status = 'sent'))
		 ORDER BY valid_until
		 LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListExpirable: %w", err)
	}
	return docs, nil
}
