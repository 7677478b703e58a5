package port

import (
	"context"

	"erpdesk/internal/domain"
)

// EmailSender defines the contract for sending workflow notifications.
type EmailSender interface {
	SendApprovalRequest(ctx context.Context, toEmail, toName string, doc *domain.Document) error
	SendStatusChanged(ctx context.Context, toEmail, toName string, doc *domain.Document) error
}
