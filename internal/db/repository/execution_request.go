package repository

import (
	"context"
	"database/sql"
	"fmt"

	"querygate/internal/domain"
)

type ExecutionRequestRepo struct {
	db *sql.DB
}

func NewExecutionRequestRepo(db *sql.DB) *ExecutionRequestRepo {
	return &ExecutionRequestRepo{db: db}
}

var _ domain.ExecutionRequestRepository = (*ExecutionRequestRepo)(nil)

func (r *ExecutionRequestRepo) Create(ctx context.Context, req *domain.ExecutionRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO execution_requests
		   (id, connection_id, type, title, description, statement, read_only, author_id, created_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.ConnectionID, string(req.Type), req.Title, req.Description,
		req.Statement, boolToInt(req.ReadOnly), req.AuthorID, timeToDB(req.CreatedAt), req.Version,
	)
	return mapDBError(err)
}

func (r *ExecutionRequestRepo) GetByID(ctx context.Context, id string) (*domain.ExecutionRequest, error) {
	return getRequest(ctx, r.db, id)
}

func (r *ExecutionRequestRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.ExecutionRequest, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM execution_requests`).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, connection_id, type, title, description, statement, read_only, author_id, created_at, version
		 FROM execution_requests ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	var reqs []domain.ExecutionRequest
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, 0, mapDBError(err)
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err)
	}
	return reqs, total, nil
}

func (r *ExecutionRequestRepo) ListEvents(ctx context.Context, requestID string) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, request_id, author_id, type, payload, created_at
		 FROM events WHERE request_id = ? ORDER BY created_at, id`,
		requestID,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			meta      domain.EventMeta
			kind      string
			payload   []byte
			createdAt string
		)
		if err := rows.Scan(&meta.ID, &meta.RequestID, &meta.AuthorID, &kind, &payload, &createdAt); err != nil {
			return nil, mapDBError(err)
		}
		if meta.CreatedAt, err = timeFromDB(createdAt); err != nil {
			return nil, err
		}

		evt, err := domain.DecodeEvent(meta, domain.EventType(kind), payload)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err)
	}
	return events, nil
}

// AppendEvent commits evt if the request's stored version still equals
// expectedVersion, bumping the version in the same transaction. The event id
// is assigned here, on persistence.
func (r *ExecutionRequestRepo) AppendEvent(ctx context.Context, expectedVersion int64, evt domain.Event) (domain.Event, error) {
	return r.appendInTx(ctx, expectedVersion, evt, domain.StatementUpdate{})
}

// AppendEditEvent appends the pre-edit snapshot and applies the content
// update atomically, under the same version check as AppendEvent.
func (r *ExecutionRequestRepo) AppendEditEvent(ctx context.Context, expectedVersion int64, evt *domain.EditEvent, update domain.StatementUpdate) (*domain.EditEvent, error) {
	persisted, err := r.appendInTx(ctx, expectedVersion, evt, update)
	if err != nil {
		return nil, err
	}
	return persisted.(*domain.EditEvent), nil
}

func (r *ExecutionRequestRepo) appendInTx(ctx context.Context, expectedVersion int64, evt domain.Event, update domain.StatementUpdate) (domain.Event, error) {
	meta := evt.Meta()
	if meta.RequestID == "" {
		return nil, domain.ErrValidation("event request id is required")
	}

	payload, err := domain.EncodeEventPayload(evt)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE execution_requests SET version = version + 1 WHERE id = ? AND version = ?`,
		meta.RequestID, expectedVersion,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, mapDBError(err)
	}
	if affected == 0 {
		// Distinguish a lost race from a missing request.
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM execution_requests WHERE id = ?`, meta.RequestID).Scan(&exists)
		if err != nil {
			return nil, mapDBError(err)
		}
		if exists == 0 {
			return nil, domain.ErrNotFound("execution request %s not found", meta.RequestID)
		}
		return nil, &domain.ConcurrentModificationError{RequestID: meta.RequestID}
	}

	if update.Title != nil || update.Description != nil || update.Statement != nil || update.ReadOnly != nil {
		if err := applyUpdate(ctx, tx, meta.RequestID, update); err != nil {
			return nil, err
		}
	}

	meta.ID = domain.NewID()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, request_id, author_id, type, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.RequestID, meta.AuthorID, string(evt.Type()), string(payload), timeToDB(meta.CreatedAt),
	)
	if err != nil {
		return nil, mapDBError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapDBError(err)
	}

	persisted, err := domain.DecodeEvent(meta, evt.Type(), payload)
	if err != nil {
		return nil, err
	}
	return persisted, nil
}

func applyUpdate(ctx context.Context, tx *sql.Tx, requestID string, update domain.StatementUpdate) error {
	set := ""
	args := []interface{}{}
	add := func(col string, val interface{}) {
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = ?", col)
		args = append(args, val)
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Statement != nil {
		add("statement", *update.Statement)
	}
	if update.ReadOnly != nil {
		add("read_only", boolToInt(*update.ReadOnly))
	}

	args = append(args, requestID)
	_, err := tx.ExecContext(ctx, "UPDATE execution_requests SET "+set+" WHERE id = ?", args...)
	return mapDBError(err)
}

type scanFunc func(dest ...interface{}) error

func scanRequest(scan scanFunc) (*domain.ExecutionRequest, error) {
	var (
		req       domain.ExecutionRequest
		reqType   string
		readOnly  int64
		createdAt string
	)
	err := scan(&req.ID, &req.ConnectionID, &reqType, &req.Title, &req.Description,
		&req.Statement, &readOnly, &req.AuthorID, &createdAt, &req.Version)
	if err != nil {
		return nil, err
	}
	req.Type = domain.RequestType(reqType)
	req.ReadOnly = readOnly != 0
	created, err := timeFromDB(createdAt)
	if err != nil {
		return nil, err
	}
	req.CreatedAt = created
	return &req, nil
}

func getRequest(ctx context.Context, db *sql.DB, id string) (*domain.ExecutionRequest, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, connection_id, type, title, description, statement, read_only, author_id, created_at, version
		 FROM execution_requests WHERE id = ?`, id)

	req, err := scanRequest(row.Scan)
	if err != nil {
		return nil, mapDBError(err)
	}
	return req, nil
}
