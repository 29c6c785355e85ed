package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"querygate/internal/domain"
	"querygate/internal/review"
)

// maxAppendRetries bounds how often an append is retried after losing an
// optimistic-concurrency race. Each retry re-reads the request and
// re-evaluates any gating before appending again.
const maxAppendRetries = 3

// ExecutionRequestService drives the request lifecycle: creation, discussion,
// review, edits, and approval-gated execution. Every mutation after creation
// is an event append under an optimistic version check, so concurrent
// mutations of the same request serialize cleanly.
type ExecutionRequestService struct {
	requests domain.ExecutionRequestRepository
	conns    domain.ConnectionRepository
	policy   review.ExecutionPolicy
	logger   *slog.Logger
	now      func() time.Time
}

// NewExecutionRequestService creates a new ExecutionRequestService.
func NewExecutionRequestService(
	requests domain.ExecutionRequestRepository,
	conns domain.ConnectionRepository,
	policy review.ExecutionPolicy,
	logger *slog.Logger,
) *ExecutionRequestService {
	return &ExecutionRequestService{
		requests: requests,
		conns:    conns,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// RequestWithStatus pairs a request with its derived review status for list
// responses.
type RequestWithStatus struct {
	Request      domain.ExecutionRequest
	ReviewStatus domain.ReviewStatus
}

// RequestDetails is the full view of a request: its event log in display
// order and the review status derived from it.
type RequestDetails struct {
	Request      *domain.ExecutionRequest
	Events       []domain.Event
	ReviewStatus domain.ReviewStatus
}

// Create validates and persists a new execution request.
func (s *ExecutionRequestService) Create(ctx context.Context, in domain.CreateExecutionRequestInput) (*domain.ExecutionRequest, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	req, err := domain.NewExecutionRequest(in, p.UserID, s.now())
	if err != nil {
		return nil, err
	}

	// Reject dangling connection references up front.
	if _, err := s.conns.GetByID(ctx, req.ConnectionID); err != nil {
		if errors.As(err, new(*domain.NotFoundError)) {
			return nil, domain.ErrValidation("connection %s does not exist", req.ConnectionID)
		}
		return nil, err
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("execution request created",
		"request_id", req.ID, "connection_id", req.ConnectionID, "author_id", req.AuthorID)
	return req, nil
}

// Get returns a request with its sorted event log and derived review status.
func (s *ExecutionRequestService) Get(ctx context.Context, id string) (*RequestDetails, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detailsFor(ctx, req)
}

// List returns a page of requests, each with its derived review status.
func (s *ExecutionRequestService) List(ctx context.Context, page domain.PageRequest) ([]RequestWithStatus, int64, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, 0, err
	}

	reqs, total, err := s.requests.List(ctx, page)
	if err != nil {
		return nil, 0, err
	}

	// Connections repeat across requests; resolve each threshold once.
	thresholds := make(map[string]int)
	out := make([]RequestWithStatus, 0, len(reqs))
	for i := range reqs {
		req := reqs[i]
		required, ok := thresholds[req.ConnectionID]
		if !ok {
			conn, err := s.conns.GetByID(ctx, req.ConnectionID)
			if err != nil {
				return nil, 0, err
			}
			required = conn.ReviewsRequired
			thresholds[req.ConnectionID] = required
		}

		events, err := s.requests.ListEvents(ctx, req.ID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, RequestWithStatus{
			Request:      req,
			ReviewStatus: review.Evaluate(required, req.AuthorID, events),
		})
	}
	return out, total, nil
}

// AddComment appends a discussion comment to the request's event log.
func (s *ExecutionRequestService) AddComment(ctx context.Context, requestID, comment string) (domain.Event, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if comment == "" {
		return nil, domain.ErrValidation("comment must not be empty")
	}

	return s.appendWithRetry(ctx, requestID, func(req *domain.ExecutionRequest) (domain.Event, error) {
		return &domain.CommentEvent{
			EventMeta: s.newMeta(requestID, p.UserID),
			Comment:   comment,
		}, nil
	})
}

// AddReview appends a review verdict. Reviews by the request's author are
// recorded but never count toward the status fold.
func (s *ExecutionRequestService) AddReview(ctx context.Context, requestID string, action domain.ReviewAction, comment string) (domain.Event, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !action.IsValid() {
		return nil, domain.ErrValidation("unknown review action %q", action)
	}

	return s.appendWithRetry(ctx, requestID, func(req *domain.ExecutionRequest) (domain.Event, error) {
		return &domain.ReviewEvent{
			EventMeta: s.newMeta(requestID, p.UserID),
			Comment:   comment,
			Action:    action,
		}, nil
	})
}

// Update patches the request content, recording the pre-edit snapshot as an
// EditEvent in the same transaction. Only the author or an admin may edit.
func (s *ExecutionRequestService) Update(ctx context.Context, requestID string, in domain.UpdateExecutionRequestInput) (*RequestDetails, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if in.IsEmpty() {
		return nil, domain.ErrValidation("update must change at least one field")
	}
	if in.Title != nil && *in.Title == "" {
		return nil, domain.ErrValidation("title must not be empty")
	}
	if in.Statement != nil && *in.Statement == "" {
		return nil, domain.ErrValidation("statement must not be empty")
	}

	var updated *domain.ExecutionRequest
	for attempt := 0; ; attempt++ {
		req, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if req.AuthorID != p.UserID && !p.IsAdmin {
			return nil, domain.ErrAccessDenied("only the author may edit an execution request")
		}

		evt := &domain.EditEvent{
			EventMeta:     s.newMeta(requestID, p.UserID),
			PreviousQuery: req.Statement,
		}
		if req.Type == domain.RequestTypeCommand {
			evt.PreviousQuery = ""
			evt.PreviousCommand = req.Statement
		}

		_, err = s.requests.AppendEditEvent(ctx, req.Version, evt, domain.StatementUpdate{
			Title:       in.Title,
			Description: in.Description,
			Statement:   in.Statement,
			ReadOnly:    in.ReadOnly,
		})
		if err == nil {
			updated, err = s.requests.GetByID(ctx, requestID)
			if err != nil {
				return nil, err
			}
			break
		}
		if !errors.As(err, new(*domain.ConcurrentModificationError)) || attempt+1 >= maxAppendRetries {
			return nil, err
		}
		s.logger.Debug("edit lost append race, retrying", "request_id", requestID, "attempt", attempt+1)
	}

	return s.detailsFor(ctx, updated)
}

// Execute records an execution attempt. The review status is re-derived from
// the event log on every attempt, and the version check on the append
// guarantees the log has not moved between evaluation and commit. A stale
// approval can therefore never slip through.
func (s *ExecutionRequestService) Execute(ctx context.Context, requestID string) (domain.Event, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	evt, err := s.appendWithRetry(ctx, requestID, func(req *domain.ExecutionRequest) (domain.Event, error) {
		events, err := s.requests.ListEvents(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		conn, err := s.conns.GetByID(ctx, req.ConnectionID)
		if err != nil {
			return nil, err
		}

		status := review.Evaluate(conn.ReviewsRequired, req.AuthorID, events)
		if err := review.CanExecute(status, p.UserID, req.AuthorID, s.policy); err != nil {
			return nil, err
		}

		exec := &domain.ExecuteEvent{EventMeta: s.newMeta(requestID, p.UserID)}
		if req.Type == domain.RequestTypeCommand {
			exec.Command = req.Statement
		} else {
			exec.Query = req.Statement
		}
		return exec, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("execution request executed",
		"request_id", requestID, "executor_id", p.UserID)
	return evt, nil
}

// appendWithRetry runs the read-build-append cycle, retrying a bounded number
// of times when the append loses the optimistic version check. build runs
// again on every retry so gating decisions always see the fresh log.
func (s *ExecutionRequestService) appendWithRetry(ctx context.Context, requestID string, build func(*domain.ExecutionRequest) (domain.Event, error)) (domain.Event, error) {
	for attempt := 0; ; attempt++ {
		req, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}

		evt, err := build(req)
		if err != nil {
			return nil, err
		}

		persisted, err := s.requests.AppendEvent(ctx, req.Version, evt)
		if err == nil {
			return persisted, nil
		}
		if !errors.As(err, new(*domain.ConcurrentModificationError)) || attempt+1 >= maxAppendRetries {
			return nil, err
		}
		s.logger.Debug("append lost version race, retrying", "request_id", requestID, "attempt", attempt+1)
	}
}

func (s *ExecutionRequestService) newMeta(requestID, authorID string) domain.EventMeta {
	return domain.EventMeta{RequestID: requestID, AuthorID: authorID, CreatedAt: s.now().UTC()}
}

func (s *ExecutionRequestService) detailsFor(ctx context.Context, req *domain.ExecutionRequest) (*RequestDetails, error) {
	events, err := s.requests.ListEvents(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	conn, err := s.conns.GetByID(ctx, req.ConnectionID)
	if err != nil {
		return nil, err
	}

	det := domain.NewExecutionRequestDetails(req, events)
	return &RequestDetails{
		Request:      det.Request,
		Events:       det.Events,
		ReviewStatus: review.Evaluate(conn.ReviewsRequired, req.AuthorID, det.Events),
	}, nil
}
