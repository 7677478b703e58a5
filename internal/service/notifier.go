package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"erpdesk/internal/domain"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/port"
)

// Notifier delivers the side effects of a saved document change: realtime
// events and workflow emails. Failures are logged and never returned.
type Notifier struct {
	events   port.EventPublisher
	email    port.EmailSender
	userRepo port.UserRepository
	log      zerolog.Logger
}

// NewNotifier creates a Notifier. events and email may be nil.
func NewNotifier(events port.EventPublisher, email port.EmailSender, userRepo port.UserRepository, log zerolog.Logger) *Notifier {
	return &Notifier{events: events, email: email, userRepo: userRepo, log: log}
}

// Publish broadcasts a document event.
func (n *Notifier) Publish(t domain.EventType, doc *domain.Document, actorID uuid.UUID) {
	if n == nil || n.events == nil {
		return
	}
	n.events.Publish(domain.NewDocumentEvent(t, doc, actorID))
}

// DocumentChanged emails whoever has to act next on doc, or its creator when
// the workflow reached an outcome.
func (n *Notifier) DocumentChanged(ctx context.Context, doc *domain.Document) {
	if n == nil || n.email == nil || n.userRepo == nil {
		return
	}

	if doc.Status == domain.StatusInReview {
		step, ok := lifecycle.CurrentStep(doc)
		if !ok {
			return
		}
		user, err := n.userRepo.GetByID(ctx, doc.TenantID, step.ApproverID)
		if err != nil {
			n.log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("notifier: approver lookup failed")
			return
		}
		if err := n.email.SendApprovalRequest(ctx, user.Email, user.FullName, doc); err != nil {
			n.log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("notifier: approval request email failed")
		}
		return
	}

	switch doc.Status {
	case domain.StatusApproved, domain.StatusRejected, domain.StatusPaid,
		domain.StatusAccepted, domain.StatusExpired, domain.StatusCancelled:
	default:
		return
	}
	user, err := n.userRepo.GetByID(ctx, doc.TenantID, doc.CreatedBy)
	if err != nil {
		n.log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("notifier: creator lookup failed")
		return
	}
	if err := n.email.SendStatusChanged(ctx, user.Email, user.FullName, doc); err != nil {
		n.log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("notifier: status email failed")
	}
}
