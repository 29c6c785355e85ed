package domain

import (
	"strings"
	"time"
)

// ReviewStatus is the derived review state of an execution request. It is
// never stored; it is recomputed from the event log on every read.
type ReviewStatus string

const (
	StatusAwaitingApproval ReviewStatus = "AWAITING_APPROVAL"
	StatusApproved         ReviewStatus = "APPROVED"
	StatusChangesRequested ReviewStatus = "CHANGES_REQUESTED"
	// StatusRejected is reserved for a future terminal rejection flow.
	// No code path currently produces it.
	StatusRejected ReviewStatus = "REJECTED"
)

// RequestType distinguishes statement-backed requests from container
// command requests.
type RequestType string

const (
	RequestTypeQuery   RequestType = "QUERY"
	RequestTypeCommand RequestType = "COMMAND"
)

// ExecutionRequest is the reviewable unit of work: a statement or command a
// user wants to run against a datasource connection, gated behind review.
type ExecutionRequest struct {
	ID           string
	ConnectionID string
	Type         RequestType
	Title        string
	Description  string
	// Statement is the current content under review. Its history lives in
	// EditEvents; only the latest value is kept here.
	Statement string
	ReadOnly  bool
	AuthorID  string
	CreatedAt time.Time
	// Version counts appended events and backs optimistic concurrency on
	// appends. It is a storage concern and never exposed over the API.
	Version int64
}

// CreateExecutionRequestInput carries the caller-supplied fields for a new
// execution request.
type CreateExecutionRequestInput struct {
	ConnectionID string
	Type         RequestType
	Title        string
	Description  string
	Statement    string
	ReadOnly     bool
}

// NewExecutionRequest validates input and constructs a request with a fresh
// id and zero version. The connection's existence is checked by the service,
// not here.
func NewExecutionRequest(in CreateExecutionRequestInput, authorID string, now time.Time) (*ExecutionRequest, error) {
	if strings.TrimSpace(in.ConnectionID) == "" {
		return nil, ErrValidation("connection id is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrValidation("title is required")
	}
	if strings.TrimSpace(in.Statement) == "" {
		return nil, ErrValidation("statement is required")
	}
	if authorID == "" {
		return nil, ErrValidation("author id is required")
	}
	switch in.Type {
	case RequestTypeQuery, RequestTypeCommand:
	case "":
		in.Type = RequestTypeQuery
	default:
		return nil, ErrValidation("unknown request type %q", in.Type)
	}
	return &ExecutionRequest{
		ID:           NewID(),
		ConnectionID: in.ConnectionID,
		Type:         in.Type,
		Title:        in.Title,
		Description:  in.Description,
		Statement:    in.Statement,
		ReadOnly:     in.ReadOnly,
		AuthorID:     authorID,
		CreatedAt:    now.UTC(),
		Version:      0,
	}, nil
}

// UpdateExecutionRequestInput carries the patchable fields of a request.
// Nil means leave unchanged.
type UpdateExecutionRequestInput struct {
	Title       *string
	Description *string
	Statement   *string
	ReadOnly    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (in UpdateExecutionRequestInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Statement == nil && in.ReadOnly == nil
}

// ExecutionRequestDetails is a request together with its full event log,
// sorted in display order.
type ExecutionRequestDetails struct {
	Request *ExecutionRequest
	Events  []Event
}

// NewExecutionRequestDetails pairs a request with its events, sorting them
// into the canonical display order.
func NewExecutionRequestDetails(req *ExecutionRequest, events []Event) *ExecutionRequestDetails {
	return &ExecutionRequestDetails{Request: req, Events: SortEvents(events)}
}
