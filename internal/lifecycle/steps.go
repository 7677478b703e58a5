package lifecycle

import (
	"sort"
	"time"

	"erpdesk/internal/domain"
)

// effect applies edge-specific changes to the next snapshot before it is returned.
type effect func(next *domain.Document, actor Actor, at time.Time, comment string) error

// StepStates folds the append-only approval log into the effective state of
// each step, ordered by step number.
func StepStates(doc *domain.Document) []domain.ApprovalStep {
	latest := make(map[int]domain.ApprovalStep)
	for _, entry := range doc.ApprovalSteps {
		latest[entry.StepNumber] = entry
	}
	states := make([]domain.ApprovalStep, 0, len(latest))
	for _, s := range latest {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].StepNumber < states[j].StepNumber })
	return states
}

// CurrentStep returns the lowest-numbered step that is still pending.
func CurrentStep(doc *domain.Document) (domain.ApprovalStep, bool) {
	for _, s := range StepStates(doc) {
		if s.Status == domain.StepPending {
			return s, true
		}
	}
	return domain.ApprovalStep{}, false
}

func pendingCount(doc *domain.Document) int {
	n := 0
	for _, s := range StepStates(doc) {
		if s.Status == domain.StepPending {
			n++
		}
	}
	return n
}

func record(doc *domain.Document, step domain.ApprovalStep, status domain.ApprovalStepStatus, actor Actor, at time.Time, comment string) {
	by := actor.UserID
	actedAt := at
	doc.ApprovalSteps = append(doc.ApprovalSteps, domain.ApprovalStep{
		StepNumber: step.StepNumber,
		ApproverID: step.ApproverID,
		Status:     status,
		Comment:    comment,
		ActedBy:    &by,
		ActedAt:    &actedAt,
		RecordedAt: at,
	})
}

func requireApprovers(next *domain.Document, _ Actor, _ time.Time, _ string) error {
	if len(next.Approvers) == 0 {
		return domain.ErrNoApprovers
	}
	return nil
}

func openReview(next *domain.Document, _ Actor, at time.Time, _ string) error {
	if len(next.Approvers) == 0 {
		return domain.ErrNoApprovers
	}
	offset := len(StepStates(next))
	for i, approver := range next.Approvers {
		next.ApprovalSteps = append(next.ApprovalSteps, domain.ApprovalStep{
			StepNumber: offset + i + 1,
			ApproverID: approver,
			Status:     domain.StepPending,
			RecordedAt: at,
		})
	}
	return nil
}

func approveFinalStep(next *domain.Document, actor Actor, at time.Time, comment string) error {
	step, ok := CurrentStep(next)
	if !ok {
		return domain.ErrInvalidTransition
	}
	if pendingCount(next) > 1 {
		return domain.ErrApprovalPending
	}
	record(next, step, domain.StepApproved, actor, at, comment)
	return nil
}

func rejectReview(next *domain.Document, actor Actor, at time.Time, comment string) error {
	step, ok := CurrentStep(next)
	if !ok {
		return domain.ErrInvalidTransition
	}
	record(next, step, domain.StepRejected, actor, at, comment)
	for _, s := range StepStates(next) {
		if s.Status == domain.StepPending {
			next.ApprovalSteps = append(next.ApprovalSteps, domain.ApprovalStep{
				StepNumber: s.StepNumber,
				ApproverID: s.ApproverID,
				Status:     domain.StepSkipped,
				RecordedAt: at,
			})
		}
	}
	return nil
}
