// Package lifecycle owns the status transition tables of every document kind
// and enforces them. It never performs I/O: callers load a document, ask the
// machine for the next snapshot and persist it themselves.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"erpdesk/internal/domain"
)

// TransitionOptions carries the optional parts of a transition request.
type TransitionOptions struct {
	Comment string
	// ExpectedVersion, when set, must equal the document's current version.
	ExpectedVersion *int64
}

// Machine applies lifecycle transitions.
type Machine struct {
	now func() time.Time
}

// NewMachine creates a Machine using the wall clock.
func NewMachine() *Machine {
	return &Machine{now: time.Now}
}

// NewMachineWithClock creates a Machine with a custom clock.
func NewMachineWithClock(now func() time.Time) *Machine {
	return &Machine{now: now}
}

// timestamp returns a UTC, microsecond-precision time strictly after prev.
func (m *Machine) timestamp(prev time.Time) time.Time {
	now := m.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}

func checkActor(doc *domain.Document, actor Actor, expected *int64) error {
	if actor.TenantID != uuid.Nil && actor.TenantID != doc.TenantID {
		return domain.ErrNotPermitted
	}
	if expected != nil && *expected != doc.Version {
		return fmt.Errorf("%w: expected version %d, current version %d",
			domain.ErrConcurrentModification, *expected, doc.Version)
	}
	return nil
}

// Transition returns a new snapshot of doc in status target. The input
// document is never modified; on error nothing about it has changed.
func (m *Machine) Transition(doc *domain.Document, target domain.DocumentStatus, actor Actor, opts TransitionOptions) (*domain.Document, error) {
	table, err := TableFor(doc.Kind)
	if err != nil {
		return nil, err
	}
	if err := checkActor(doc, actor, opts.ExpectedVersion); err != nil {
		return nil, err
	}

	edge, ok := table.edge(doc.Status, target)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot move from %s to %s",
			domain.ErrInvalidTransition, doc.Kind, doc.Status, target)
	}
	if !edge.Guard(doc, actor) {
		return nil, fmt.Errorf("%w: role %s may not move %s from %s to %s",
			domain.ErrNotPermitted, actor.Role, doc.Kind, doc.Status, target)
	}

	at := m.timestamp(doc.UpdatedAt)
	next := doc.Clone()
	if edge.effect != nil {
		if err := edge.effect(next, actor, at, opts.Comment); err != nil {
			return nil, err
		}
	}

	next.Status = target
	next.Version = doc.Version + 1
	next.UpdatedAt = at
	next.UpdatedBy = actor.UserID
	next.StatusChangedAt = &at
	return next, nil
}

// ApproveStep records the current approver's approval. When it is the last
// pending step the document moves to approved; otherwise it stays in review
// and the next step becomes current.
func (m *Machine) ApproveStep(doc *domain.Document, actor Actor, opts TransitionOptions) (*domain.Document, error) {
	table, err := TableFor(doc.Kind)
	if err != nil {
		return nil, err
	}
	if !table.TracksApproval || doc.Status != domain.StatusInReview {
		return nil, fmt.Errorf("%w: %s in status %s has no approval step to act on",
			domain.ErrInvalidTransition, doc.Kind, doc.Status)
	}
	if pendingCount(doc) <= 1 {
		return m.Transition(doc, domain.StatusApproved, actor, opts)
	}

	if err := checkActor(doc, actor, opts.ExpectedVersion); err != nil {
		return nil, err
	}
	if !CurrentApprover()(doc, actor) {
		return nil, fmt.Errorf("%w: only the current approver may approve this step", domain.ErrNotPermitted)
	}

	step, _ := CurrentStep(doc)
	at := m.timestamp(doc.UpdatedAt)
	next := doc.Clone()
	record(next, step, domain.StepApproved, actor, at, opts.Comment)
	next.Version = doc.Version + 1
	next.UpdatedAt = at
	next.UpdatedBy = actor.UserID
	return next, nil
}

// Edit applies a non-status change to a copy of doc. Terminal documents
// are locked. The copy gets the next version and a fresh UpdatedAt.
func (m *Machine) Edit(doc *domain.Document, actor Actor, opts TransitionOptions, apply func(next *domain.Document) error) (*domain.Document, error) {
	if err := checkActor(doc, actor, opts.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := CanEditLines(doc); err != nil {
		return nil, err
	}

	next := doc.Clone()
	if err := apply(next); err != nil {
		return nil, err
	}
	next.Version = doc.Version + 1
	next.UpdatedAt = m.timestamp(doc.UpdatedAt)
	next.UpdatedBy = actor.UserID
	return next, nil
}

// Now returns the machine clock reading in UTC at microsecond precision.
func (m *Machine) Now() time.Time {
	return m.now().UTC().Truncate(time.Microsecond)
}

// AllowedTargets lists the statuses actor may move doc to right now. An edge
// is listed only when its guard passes and its effect would succeed.
func (m *Machine) AllowedTargets(doc *domain.Document, actor Actor) []domain.DocumentStatus {
	table, err := TableFor(doc.Kind)
	if err != nil {
		return nil
	}
	targets := make([]domain.DocumentStatus, 0, len(table.Edges[doc.Status]))
	for _, e := range table.Edges[doc.Status] {
		if !e.Guard(doc, actor) {
			continue
		}
		if e.effect != nil && e.effect(doc.Clone(), actor, doc.UpdatedAt, "") != nil {
			continue
		}
		targets = append(targets, e.To)
	}
	return targets
}

// InitialStatus resolves the creation status for a kind. An empty request
// selects the kind's default.
func InitialStatus(kind domain.DocumentKind, requested domain.DocumentStatus) (domain.DocumentStatus, error) {
	table, err := TableFor(kind)
	if err != nil {
		return "", err
	}
	if requested == "" {
		return table.Initial[0], nil
	}
	for _, s := range table.Initial {
		if s == requested {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %s cannot start in %s", domain.ErrInvalidStatus, kind, requested)
}

// IsTerminal reports whether doc can no longer change status.
func IsTerminal(doc *domain.Document) bool {
	table, err := TableFor(doc.Kind)
	if err != nil {
		return false
	}
	return table.Terminal(doc.Status)
}

// CanEditLines returns ErrDocumentLocked for documents in a terminal status.
func CanEditLines(doc *domain.Document) error {
	if IsTerminal(doc) {
		return fmt.Errorf("%w: %s %s is %s", domain.ErrDocumentLocked, doc.Kind, doc.Code, doc.Status)
	}
	return nil
}
