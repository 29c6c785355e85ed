package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querygate/internal/domain"
)

func TestConnectionService_Create_RequiresAdmin(t *testing.T) {
	svc := NewConnectionService(&mockConnectionRepo{})

	_, err := svc.Create(userCtx("user-1"), domain.CreateConnectionInput{
		Name: "prod-db", Type: domain.DatasourcePostgres,
	})

	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestConnectionService_Create(t *testing.T) {
	var created *domain.DatasourceConnection
	repo := &mockConnectionRepo{
		CreateFn: func(_ context.Context, conn *domain.DatasourceConnection) error {
			created = conn
			return nil
		},
	}
	svc := NewConnectionService(repo)

	conn, err := svc.Create(adminCtx(), domain.CreateConnectionInput{
		Name: "prod-db", Type: domain.DatasourcePostgres, ReviewsRequired: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, conn.ID)
	assert.Equal(t, 2, conn.ReviewsRequired)
}

func TestConnectionService_Create_DefaultThreshold(t *testing.T) {
	svc := NewConnectionService(&mockConnectionRepo{})

	conn, err := svc.Create(adminCtx(), domain.CreateConnectionInput{
		Name: "prod-db", Type: domain.DatasourceMySQL,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, conn.ReviewsRequired)
}

func TestConnectionService_List_RequiresAuth(t *testing.T) {
	svc := NewConnectionService(&mockConnectionRepo{})

	_, _, err := svc.List(context.Background(), domain.PageRequest{})

	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestUserService_Create_RequiresAdmin(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	_, err := svc.Create(userCtx("user-1"), CreateUserInput{Email: "a@example.com"})

	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestUserService_Create(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	user, err := svc.Create(adminCtx(), CreateUserInput{Email: "Alice@Example.com", DisplayName: "Alice"})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsAdmin)
}

func TestUserService_Create_InvalidEmail(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	_, err := svc.Create(adminCtx(), CreateUserInput{Email: "not-an-email"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}
