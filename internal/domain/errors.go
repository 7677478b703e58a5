package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrTenantInactive         = errors.New("tenant is inactive")
	ErrUserInactive           = errors.New("user is inactive")
	ErrDuplicateEmail         = errors.New("email already exists for this tenant")
	ErrDuplicateTenantSlug    = errors.New("tenant slug already exists")
	ErrDocumentNotFound       = errors.New("document not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidTaxRate         = errors.New("invalid tax rate")
	ErrConcurrentModification = errors.New("document was modified concurrently")
	ErrDocumentLocked         = errors.New("document is locked")
	ErrApprovalPending        = errors.New("earlier approval steps are still pending")
	ErrNoApprovers            = errors.New("at least one approver is required")
	ErrInvalidApprover        = errors.New("approver cannot review documents")
	ErrInvalidDocumentKind    = errors.New("invalid document kind")
	ErrInvalidStatus          = errors.New("invalid initial status for document kind")
	ErrInvalidSupplyType      = errors.New("invalid supply type")
	ErrInvalidGSTIN           = errors.New("invalid GSTIN")
	ErrDocumentReferenced     = errors.New("document is referenced by another document")
	ErrDerivationNotAllowed   = errors.New("document cannot be derived in its current status")
	ErrBelowEWayBillThreshold = errors.New("consignment value is below the e-way bill threshold")
	ErrExportFailed           = errors.New("document register export failed")
	ErrInvalidRole            = errors.New("invalid role")
	ErrHSNNotFound            = errors.New("no GST rate registered for HSN code")
	ErrInvalidTenantSlug      = errors.New("invalid tenant slug")
	ErrInvalidStateCode       = errors.New("unknown state code")
	ErrInvalidTenantName      = errors.New("invalid tenant name")
)

// ErrNotPermitted is returned when an authenticated actor may not perform a
// lifecycle action. It matches ErrUnauthorized.
var ErrNotPermitted = fmt.Errorf("%w: actor may not perform this action", ErrUnauthorized)
