package noop

import (
	"context"

	"github.com/rs/zerolog"

	"erpdesk/internal/domain"
	"erpdesk/internal/email"
	"erpdesk/internal/port"
)

type noopSender struct {
	frontendURL string
	log         zerolog.Logger
}

// NewNoopSender creates an EmailSender that only logs what it would send.
func NewNoopSender(frontendURL string, log zerolog.Logger) port.EmailSender {
	return &noopSender{frontendURL: frontendURL, log: log}
}

func (s *noopSender) SendApprovalRequest(_ context.Context, toEmail, toName string, doc *domain.Document) error {
	s.logMessage(toEmail, email.ApprovalRequest(s.frontendURL, toName, doc), doc)
	return nil
}

func (s *noopSender) SendStatusChanged(_ context.Context, toEmail, toName string, doc *domain.Document) error {
	s.logMessage(toEmail, email.StatusChanged(s.frontendURL, toName, doc), doc)
	return nil
}

func (s *noopSender) logMessage(to string, msg email.Message, doc *domain.Document) {
	s.log.Info().
		Str("to", to).
		Str("subject", msg.Subject).
		Str("document_id", doc.ID.String()).
		Msg("noop email")
}
