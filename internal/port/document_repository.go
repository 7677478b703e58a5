package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"erpdesk/internal/domain"
)

// DocumentFilter narrows document listings. Zero values match everything.
type DocumentFilter struct {
	Kind      domain.DocumentKind
	Status    domain.DocumentStatus
	CreatedBy *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// DocumentRepository is the document store. Update is a compare-and-swap on
// the document version.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, tenantID, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter, offset, limit int) ([]domain.Document, int, error)
	// Update saves doc if the stored version still equals expectedVersion,
	// otherwise it returns domain.ErrConcurrentModification.
	Update(ctx context.Context, doc *domain.Document, expectedVersion int64) error
	Delete(ctx context.Context, tenantID, docID uuid.UUID) error
	// CountReferences returns how many documents were derived from docID.
	CountReferences(ctx context.Context, tenantID, docID uuid.UUID) (int, error)
	// ListExpirable returns documents of any tenant whose validity ended
	// before now while still in a status that can expire.
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]domain.Document, error)
}

// SequenceGenerator issues per-tenant business codes such as EXP-2024-001.
type SequenceGenerator interface {
	Next(ctx context.Context, tenantID uuid.UUID, kind domain.DocumentKind, year int) (string, error)
}
