package port

import (
	"context"

	"erpdesk/internal/domain"
)

// HSNRepository resolves GST rates by HSN/SAC code.
type HSNRepository interface {
	// LookupRate returns the rate of the longest registered code that
	// prefixes code, or domain.ErrHSNNotFound.
	LookupRate(ctx context.Context, code string) (*domain.HSNRate, error)
}
