package repository

import (
	"context"
	"database/sql"

	"querygate/internal/domain"
)

type ConnectionRepo struct {
	db *sql.DB
}

func NewConnectionRepo(db *sql.DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

var _ domain.ConnectionRepository = (*ConnectionRepo)(nil)

func (r *ConnectionRepo) Create(ctx context.Context, conn *domain.DatasourceConnection) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO connections (id, name, description, type, reviews_required, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		conn.ID, conn.Name, conn.Description, string(conn.Type), conn.ReviewsRequired, timeToDB(conn.CreatedAt),
	)
	return mapDBError(err)
}

func (r *ConnectionRepo) GetByID(ctx context.Context, id string) (*domain.DatasourceConnection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, type, reviews_required, created_at
		 FROM connections WHERE id = ?`, id)

	var (
		conn      domain.DatasourceConnection
		connType  string
		createdAt string
	)
	if err := row.Scan(&conn.ID, &conn.Name, &conn.Description, &connType, &conn.ReviewsRequired, &createdAt); err != nil {
		return nil, mapDBError(err)
	}
	conn.Type = domain.DatasourceType(connType)
	created, err := timeFromDB(createdAt)
	if err != nil {
		return nil, err
	}
	conn.CreatedAt = created
	return &conn, nil
}

func (r *ConnectionRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.DatasourceConnection, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM connections`).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, type, reviews_required, created_at
		 FROM connections ORDER BY name LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	var conns []domain.DatasourceConnection
	for rows.Next() {
		var (
			conn      domain.DatasourceConnection
			connType  string
			createdAt string
		)
		if err := rows.Scan(&conn.ID, &conn.Name, &conn.Description, &connType, &conn.ReviewsRequired, &createdAt); err != nil {
			return nil, 0, mapDBError(err)
		}
		conn.Type = domain.DatasourceType(connType)
		if conn.CreatedAt, err = timeFromDB(createdAt); err != nil {
			return nil, 0, err
		}
		conns = append(conns, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err)
	}
	return conns, total, nil
}
