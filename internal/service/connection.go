package service

import (
	"context"
	"time"

	"querygate/internal/domain"
)

// ConnectionService manages datasource connections.
type ConnectionService struct {
	repo domain.ConnectionRepository
	now  func() time.Time
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(repo domain.ConnectionRepository) *ConnectionService {
	return &ConnectionService{repo: repo, now: time.Now}
}

// Create registers a new connection. Requires admin privileges.
func (s *ConnectionService) Create(ctx context.Context, in domain.CreateConnectionInput) (*domain.DatasourceConnection, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	conn, err := domain.NewDatasourceConnection(in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Get returns a connection by id.
func (s *ConnectionService) Get(ctx context.Context, id string) (*domain.DatasourceConnection, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns a paginated list of connections.
func (s *ConnectionService) List(ctx context.Context, page domain.PageRequest) ([]domain.DatasourceConnection, int64, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, page)
}
