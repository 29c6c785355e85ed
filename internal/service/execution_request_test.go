package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querygate/internal/domain"
	"querygate/internal/review"
	"querygate/internal/testutil"
)

func newRequestService(repo *mockExecutionRequestRepo, conns *mockConnectionRepo, policy review.ExecutionPolicy) *ExecutionRequestService {
	return NewExecutionRequestService(repo, conns, policy, discardLogger())
}

func createRequest(t *testing.T, svc *ExecutionRequestService, authorID string) *domain.ExecutionRequest {
	t.Helper()
	req, err := svc.Create(userCtx(authorID), domain.CreateExecutionRequestInput{
		ConnectionID: "conn-1",
		Title:        "backfill orders",
		Statement:    "UPDATE orders SET status = 'shipped'",
	})
	require.NoError(t, err)
	return req
}

func TestExecutionRequestService_Create(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{AuthorCanExecute: true})

	req := createRequest(t, svc, "author-1")

	assert.Equal(t, "author-1", req.AuthorID)

	stored, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "backfill orders", stored.Title)
}

func TestExecutionRequestService_Create_UnknownConnection(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	conns := &mockConnectionRepo{
		GetByIDFn: func(_ context.Context, id string) (*domain.DatasourceConnection, error) {
			return nil, domain.ErrNotFound("connection %s not found", id)
		},
	}
	svc := newRequestService(repo, conns, review.ExecutionPolicy{})

	_, err := svc.Create(userCtx("author-1"), domain.CreateExecutionRequestInput{
		ConnectionID: "ghost",
		Title:        "t",
		Statement:    "SELECT 1",
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestExecutionRequestService_Create_RequiresAuth(t *testing.T) {
	svc := newRequestService(testutil.NewMockExecutionRequestRepo(), fixedConn(1), review.ExecutionPolicy{})

	_, err := svc.Create(context.Background(), domain.CreateExecutionRequestInput{
		ConnectionID: "conn-1", Title: "t", Statement: "SELECT 1",
	})

	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestExecutionRequestService_AddComment(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})
	req := createRequest(t, svc, "author-1")

	evt, err := svc.AddComment(userCtx("rev-1"), req.ID, "why not read only?")
	require.NoError(t, err)
	assert.NotEmpty(t, evt.Meta().ID)

	det, err := svc.Get(userCtx("rev-1"), req.ID)
	require.NoError(t, err)
	require.Len(t, det.Events, 1)
	assert.Equal(t, "why not read only?", det.Events[0].(*domain.CommentEvent).Comment)
}

func TestExecutionRequestService_AddComment_Empty(t *testing.T) {
	svc := newRequestService(testutil.NewMockExecutionRequestRepo(), fixedConn(1), review.ExecutionPolicy{})

	_, err := svc.AddComment(userCtx("rev-1"), "req-1", "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestExecutionRequestService_AddReview_DrivesStatus(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})
	req := createRequest(t, svc, "author-1")

	det, err := svc.Get(userCtx("author-1"), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingApproval, det.ReviewStatus)

	_, err = svc.AddReview(userCtx("rev-1"), req.ID, domain.ReviewActionRequestChange, "narrow the where clause")
	require.NoError(t, err)

	det, err = svc.Get(userCtx("author-1"), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusChangesRequested, det.ReviewStatus)

	_, err = svc.AddReview(userCtx("rev-1"), req.ID, domain.ReviewActionApprove, "looks good now")
	require.NoError(t, err)

	det, err = svc.Get(userCtx("author-1"), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, det.ReviewStatus)
}

func TestExecutionRequestService_AddReview_InvalidAction(t *testing.T) {
	svc := newRequestService(testutil.NewMockExecutionRequestRepo(), fixedConn(1), review.ExecutionPolicy{})

	_, err := svc.AddReview(userCtx("rev-1"), "req-1", "MERGE", "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestExecutionRequestService_SelfApprovalDoesNotApprove(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})
	req := createRequest(t, svc, "author-1")

	// The author's approval is recorded but stays policy-neutral.
	_, err := svc.AddReview(userCtx("author-1"), req.ID, domain.ReviewActionApprove, "")
	require.NoError(t, err)

	det, err := svc.Get(userCtx("author-1"), req.ID)
	require.NoError(t, err)
	require.Len(t, det.Events, 1)
	assert.Equal(t, domain.StatusAwaitingApproval, det.ReviewStatus)
}

func TestExecutionRequestService_Update(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})
	req := createRequest(t, svc, "author-1")

	newStatement := "UPDATE orders SET status = 'shipped' WHERE id = 42"
	det, err := svc.Update(userCtx("author-1"), req.ID, domain.UpdateExecutionRequestInput{
		Statement: &newStatement,
	})
	require.NoError(t, err)

	assert.Equal(t, newStatement, det.Request.Statement)
	require.Len(t, det.Events, 1)
	edit := det.Events[0].(*domain.EditEvent)
	assert.Equal(t, "UPDATE orders SET status = 'shipped'", edit.PreviousQuery)
}

func TestExecutionRequestService_Update_OnlyAuthor(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})
	req := createRequest(t, svc, "author-1")

	title := "hijacked"
	_, err := svc.Update(userCtx("rev-1"), req.ID, domain.UpdateExecutionRequestInput{Title: &title})

	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	// Admins can edit on the author's behalf.
	_, err = svc.Update(adminCtx(), req.ID, domain.UpdateExecutionRequestInput{Title: &title})
	require.NoError(t, err)
}

func TestExecutionRequestService_Update_EmptyPatch(t *testing.T) {
	svc := newRequestService(testutil.NewMockExecutionRequestRepo(), fixedConn(1), review.ExecutionPolicy{})

	_, err := svc.Update(userCtx("author-1"), "req-1", domain.UpdateExecutionRequestInput{})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestExecutionRequestService_Execute_Approved(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{AuthorCanExecute: true})
	req := createRequest(t, svc, "author-1")

	_, err := svc.AddReview(userCtx("rev-1"), req.ID, domain.ReviewActionApprove, "")
	require.NoError(t, err)

	evt, err := svc.Execute(userCtx("author-1"), req.ID)
	require.NoError(t, err)

	exec := evt.(*domain.ExecuteEvent)
	assert.Equal(t, "UPDATE orders SET status = 'shipped'", exec.Query)
	assert.Empty(t, exec.Command)
}

func TestExecutionRequestService_Execute_NotApproved(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{AuthorCanExecute: true})
	req := createRequest(t, svc, "author-1")

	_, err := svc.Execute(userCtx("author-1"), req.ID)

	var notApproved *domain.NotApprovedError
	require.ErrorAs(t, err, &notApproved)
	assert.Equal(t, domain.StatusAwaitingApproval, notApproved.Status)

	// No execute event made it into the log.
	assert.Empty(t, repo.Events(req.ID))
}

func TestExecutionRequestService_Execute_ThresholdTwo(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(2), review.ExecutionPolicy{AuthorCanExecute: true})
	req := createRequest(t, svc, "author-1")

	_, err := svc.AddReview(userCtx("rev-1"), req.ID, domain.ReviewActionApprove, "")
	require.NoError(t, err)

	_, err = svc.Execute(userCtx("author-1"), req.ID)
	var notApproved *domain.NotApprovedError
	require.ErrorAs(t, err, &notApproved)

	_, err = svc.AddReview(userCtx("rev-2"), req.ID, domain.ReviewActionApprove, "")
	require.NoError(t, err)

	_, err = svc.Execute(userCtx("author-1"), req.ID)
	require.NoError(t, err)
}

func TestExecutionRequestService_Execute_StrictPolicyBlocksAuthor(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{AuthorCanExecute: false})
	req := createRequest(t, svc, "author-1")

	_, err := svc.AddReview(userCtx("rev-1"), req.ID, domain.ReviewActionApprove, "")
	require.NoError(t, err)

	_, err = svc.Execute(userCtx("author-1"), req.ID)
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	_, err = svc.Execute(userCtx("rev-1"), req.ID)
	require.NoError(t, err)
}

func TestExecutionRequestService_AppendRetriesOnVersionRace(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})
	req := createRequest(t, svc, "author-1")

	// Fail the first append with a version conflict, then fall back to the
	// in-memory behavior.
	calls := 0
	repo.AppendEventFn = func(ctx context.Context, expectedVersion int64, evt domain.Event) (domain.Event, error) {
		calls++
		if calls == 1 {
			return nil, &domain.ConcurrentModificationError{RequestID: req.ID}
		}
		repo.AppendEventFn = nil
		return repo.AppendEvent(ctx, expectedVersion, evt)
	}

	_, err := svc.AddComment(userCtx("rev-1"), req.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestExecutionRequestService_AppendGivesUpAfterRetries(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})
	req := createRequest(t, svc, "author-1")

	calls := 0
	repo.AppendEventFn = func(_ context.Context, _ int64, _ domain.Event) (domain.Event, error) {
		calls++
		return nil, &domain.ConcurrentModificationError{RequestID: req.ID}
	}

	_, err := svc.AddComment(userCtx("rev-1"), req.ID, "hello")

	var conflict *domain.ConcurrentModificationError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, maxAppendRetries, calls)
}

func TestExecutionRequestService_List(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})
	req := createRequest(t, svc, "author-1")

	_, err := svc.AddReview(userCtx("rev-1"), req.ID, domain.ReviewActionApprove, "")
	require.NoError(t, err)

	items, total, err := svc.List(userCtx("rev-1"), domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, domain.StatusApproved, items[0].ReviewStatus)
}

func TestExecutionRequestService_Get_Missing(t *testing.T) {
	svc := newRequestService(testutil.NewMockExecutionRequestRepo(), fixedConn(1), review.ExecutionPolicy{})

	_, err := svc.Get(userCtx("rev-1"), "nope")

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExecutionRequestService_RepoError(t *testing.T) {
	repo := testutil.NewMockExecutionRequestRepo()
	repo.GetByIDFn = func(_ context.Context, _ string) (*domain.ExecutionRequest, error) {
		return nil, errTest
	}
	svc := newRequestService(repo, fixedConn(1), review.ExecutionPolicy{})

	_, err := svc.Get(userCtx("rev-1"), "req-1")
	assert.ErrorIs(t, err, errTest)
}
