package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"querygate/internal/domain"
	"querygate/internal/testutil"
)

// errTest is a sentinel error for test scenarios.
var errTest = fmt.Errorf("test error")

// Type aliases for convenience.
type mockExecutionRequestRepo = testutil.MockExecutionRequestRepo
type mockConnectionRepo = testutil.MockConnectionRepo
type mockUserRepo = testutil.MockUserRepo

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userCtx(userID string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		UserID: userID, Email: userID + "@example.com",
	})
}

func adminCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		UserID: "admin-id", Email: "admin@example.com", IsAdmin: true,
	})
}

func fixedConn(reviewsRequired int) *mockConnectionRepo {
	return &mockConnectionRepo{
		GetByIDFn: func(_ context.Context, id string) (*domain.DatasourceConnection, error) {
			return &domain.DatasourceConnection{
				ID:              id,
				Name:            "prod-db",
				Type:            domain.DatasourcePostgres,
				ReviewsRequired: reviewsRequired,
				CreatedAt:       time.Now(),
			}, nil
		},
	}
}
