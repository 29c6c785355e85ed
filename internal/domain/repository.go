package domain

import "context"

// StatementUpdate is the set of request-content changes applied atomically
// with an EditEvent append. Nil fields are left unchanged.
type StatementUpdate struct {
	Title       *string
	Description *string
	Statement   *string
	ReadOnly    *bool
}

// ExecutionRequestRepository persists execution requests and their
// append-only event logs.
//
// AppendEvent and AppendEditEvent implement optimistic concurrency: the
// append commits only if the request's stored version still equals
// expectedVersion, and bumps it by one in the same transaction. A version
// mismatch returns ConcurrentModificationError. The repository assigns the
// event id on insert and returns the persisted event.
type ExecutionRequestRepository interface {
	Create(ctx context.Context, req *ExecutionRequest) error
	GetByID(ctx context.Context, id string) (*ExecutionRequest, error)
	List(ctx context.Context, page PageRequest) ([]ExecutionRequest, int64, error)

	ListEvents(ctx context.Context, requestID string) ([]Event, error)
	AppendEvent(ctx context.Context, expectedVersion int64, evt Event) (Event, error)
	AppendEditEvent(ctx context.Context, expectedVersion int64, evt *EditEvent, update StatementUpdate) (*EditEvent, error)
}

// ConnectionRepository persists datasource connections.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *DatasourceConnection) error
	GetByID(ctx context.Context, id string) (*DatasourceConnection, error)
	List(ctx context.Context, page PageRequest) ([]DatasourceConnection, int64, error)
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, page PageRequest) ([]User, int64, error)
}
