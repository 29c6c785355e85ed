// Package review derives the review status of an execution request from its
// event log. The status is a pure fold over the events: nothing in this
// package reads storage or mutates state, which keeps the approval rules
// trivially testable.
package review

import "querygate/internal/domain"

// ExecutionPolicy holds the deployment-level knobs that gate execution
// beyond the approval threshold itself.
type ExecutionPolicy struct {
	// AuthorCanExecute permits a request's author to execute it once
	// approved. Disabling it enforces strict four-eyes execution.
	AuthorCanExecute bool
}

// Evaluate folds the event log into a review status.
//
// Only review events from reviewers other than the author count; a review by
// the author is accepted into the log but is policy-neutral. Each reviewer's
// stance is their latest APPROVE or REQUEST_CHANGE in event order, with
// COMMENT reviews leaving the stance untouched. Events must already be in
// display order (domain.SortEvents); repositories return them that way.
//
// The approval threshold wins over outstanding change requests: once the
// distinct-approver count reaches requiredApprovals the request is APPROVED
// even if another reviewer still has changes requested.
func Evaluate(requiredApprovals int, authorID string, events []domain.Event) domain.ReviewStatus {
	if requiredApprovals < 1 {
		requiredApprovals = 1
	}

	stances := make(map[string]domain.ReviewAction)
	for _, evt := range events {
		rev, ok := evt.(*domain.ReviewEvent)
		if !ok {
			continue
		}
		if rev.AuthorID == authorID {
			continue
		}
		switch rev.Action {
		case domain.ReviewActionApprove, domain.ReviewActionRequestChange:
			stances[rev.AuthorID] = rev.Action
		}
	}

	approvals := 0
	changesRequested := false
	for _, action := range stances {
		switch action {
		case domain.ReviewActionApprove:
			approvals++
		case domain.ReviewActionRequestChange:
			changesRequested = true
		}
	}

	if approvals >= requiredApprovals {
		return domain.StatusApproved
	}
	if changesRequested {
		return domain.StatusChangesRequested
	}
	return domain.StatusAwaitingApproval
}

// CanExecute reports whether executorID may execute a request in the given
// status under the policy. It never consults the event log directly; callers
// evaluate the status inside the same concurrency boundary as the append.
func CanExecute(status domain.ReviewStatus, executorID, authorID string, policy ExecutionPolicy) error {
	if status != domain.StatusApproved {
		return &domain.NotApprovedError{Status: status}
	}
	if !policy.AuthorCanExecute && executorID == authorID {
		return domain.ErrAccessDenied("authors may not execute their own requests")
	}
	return nil
}
