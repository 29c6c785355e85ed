// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"querygate/internal/domain"
)

// === Execution Request Repository Mock ===

// MockExecutionRequestRepo is an in-memory domain.ExecutionRequestRepository
// with real optimistic-concurrency semantics on appends. Any Fn field, when
// set, overrides the in-memory behavior for that method.
type MockExecutionRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*domain.ExecutionRequest
	events   map[string][]domain.Event
	nextID   int

	CreateFn          func(ctx context.Context, req *domain.ExecutionRequest) error
	GetByIDFn         func(ctx context.Context, id string) (*domain.ExecutionRequest, error)
	ListFn            func(ctx context.Context, page domain.PageRequest) ([]domain.ExecutionRequest, int64, error)
	ListEventsFn      func(ctx context.Context, requestID string) ([]domain.Event, error)
	AppendEventFn     func(ctx context.Context, expectedVersion int64, evt domain.Event) (domain.Event, error)
	AppendEditEventFn func(ctx context.Context, expectedVersion int64, evt *domain.EditEvent, update domain.StatementUpdate) (*domain.EditEvent, error)
}

var _ domain.ExecutionRequestRepository = (*MockExecutionRequestRepo)(nil)

func NewMockExecutionRequestRepo() *MockExecutionRequestRepo {
	return &MockExecutionRequestRepo{
		requests: make(map[string]*domain.ExecutionRequest),
		events:   make(map[string][]domain.Event),
	}
}

func (m *MockExecutionRequestRepo) Create(ctx context.Context, req *domain.ExecutionRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *MockExecutionRequestRepo) GetByID(ctx context.Context, id string) (*domain.ExecutionRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrNotFound("execution request %s not found", id)
	}
	cp := *req
	return &cp, nil
}

func (m *MockExecutionRequestRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.ExecutionRequest, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExecutionRequest
	for _, req := range m.requests {
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (m *MockExecutionRequestRepo) ListEvents(ctx context.Context, requestID string) ([]domain.Event, error) {
	if m.ListEventsFn != nil {
		return m.ListEventsFn(ctx, requestID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.SortEvents(m.events[requestID]), nil
}

func (m *MockExecutionRequestRepo) AppendEvent(ctx context.Context, expectedVersion int64, evt domain.Event) (domain.Event, error) {
	if m.AppendEventFn != nil {
		return m.AppendEventFn(ctx, expectedVersion, evt)
	}
	return m.append(expectedVersion, evt, nil)
}

func (m *MockExecutionRequestRepo) AppendEditEvent(ctx context.Context, expectedVersion int64, evt *domain.EditEvent, update domain.StatementUpdate) (*domain.EditEvent, error) {
	if m.AppendEditEventFn != nil {
		return m.AppendEditEventFn(ctx, expectedVersion, evt, update)
	}
	persisted, err := m.append(expectedVersion, evt, &update)
	if err != nil {
		return nil, err
	}
	return persisted.(*domain.EditEvent), nil
}

func (m *MockExecutionRequestRepo) append(expectedVersion int64, evt domain.Event, update *domain.StatementUpdate) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta := evt.Meta()
	req, ok := m.requests[meta.RequestID]
	if !ok {
		return nil, domain.ErrNotFound("execution request %s not found", meta.RequestID)
	}
	if req.Version != expectedVersion {
		return nil, &domain.ConcurrentModificationError{RequestID: meta.RequestID}
	}
	req.Version++

	if update != nil {
		if update.Title != nil {
			req.Title = *update.Title
		}
		if update.Description != nil {
			req.Description = *update.Description
		}
		if update.Statement != nil {
			req.Statement = *update.Statement
		}
		if update.ReadOnly != nil {
			req.ReadOnly = *update.ReadOnly
		}
	}

	m.nextID++
	meta.ID = fmt.Sprintf("evt-%04d", m.nextID)

	payload, err := domain.EncodeEventPayload(evt)
	if err != nil {
		return nil, err
	}
	persisted, err := domain.DecodeEvent(meta, evt.Type(), payload)
	if err != nil {
		return nil, err
	}
	m.events[meta.RequestID] = append(m.events[meta.RequestID], persisted)
	return persisted, nil
}

// Events returns the stored events for a request, in append order.
func (m *MockExecutionRequestRepo) Events(requestID string) []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Event(nil), m.events[requestID]...)
}

// === Connection Repository Mock ===

// MockConnectionRepo implements domain.ConnectionRepository for testing.
type MockConnectionRepo struct {
	CreateFn  func(ctx context.Context, conn *domain.DatasourceConnection) error
	GetByIDFn func(ctx context.Context, id string) (*domain.DatasourceConnection, error)
	ListFn    func(ctx context.Context, page domain.PageRequest) ([]domain.DatasourceConnection, int64, error)
}

var _ domain.ConnectionRepository = (*MockConnectionRepo)(nil)

func (m *MockConnectionRepo) Create(ctx context.Context, conn *domain.DatasourceConnection) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, conn)
	}
	return nil
}

func (m *MockConnectionRepo) GetByID(ctx context.Context, id string) (*domain.DatasourceConnection, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	panic("unexpected call to MockConnectionRepo.GetByID")
}

func (m *MockConnectionRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.DatasourceConnection, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}
	panic("unexpected call to MockConnectionRepo.List")
}

// === User Repository Mock ===

// MockUserRepo implements domain.UserRepository for testing.
type MockUserRepo struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	ListFn       func(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error)
}

var _ domain.UserRepository = (*MockUserRepo)(nil)

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	panic("unexpected call to MockUserRepo.GetByID")
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	panic("unexpected call to MockUserRepo.GetByEmail")
}

func (m *MockUserRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}
	panic("unexpected call to MockUserRepo.List")
}
