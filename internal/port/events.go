package port

import "erpdesk/internal/domain"

// EventPublisher fans document events out to subscribers. Publish must not block.
type EventPublisher interface {
	Publish(event domain.DocumentEvent)
}
