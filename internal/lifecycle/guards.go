package lifecycle

import (
	"github.com/google/uuid"

	"erpdesk/internal/domain"
)

// Actor is the identity attempting a transition.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     domain.UserRole
}

// SystemActor returns the actor background jobs use.
func SystemActor(tenantID uuid.UUID) Actor {
	return Actor{TenantID: tenantID, UserID: uuid.Nil, Role: domain.RoleSystem}
}

// Guard decides whether an actor may take an edge on a document.
type Guard func(doc *domain.Document, actor Actor) bool

// Roles allows actors holding any of the given roles.
func Roles(roles ...domain.UserRole) Guard {
	return func(_ *domain.Document, actor Actor) bool {
		for _, r := range roles {
			if actor.Role == r {
				return true
			}
		}
		return false
	}
}

// Creator allows the user who created the document.
func Creator() Guard {
	return func(doc *domain.Document, actor Actor) bool {
		return actor.UserID != uuid.Nil && actor.UserID == doc.CreatedBy
	}
}

// CurrentApprover allows only the approver of the current pending step.
func CurrentApprover() Guard {
	return func(doc *domain.Document, actor Actor) bool {
		step, ok := CurrentStep(doc)
		return ok && actor.UserID != uuid.Nil && step.ApproverID == actor.UserID
	}
}

// Any allows the actor when at least one guard does.
func Any(guards ...Guard) Guard {
	return func(doc *domain.Document, actor Actor) bool {
		for _, g := range guards {
			if g(doc, actor) {
				return true
			}
		}
		return false
	}
}
