package repository

import (
	"context"
	"database/sql"

	"querygate/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, boolToInt(user.IsAdmin), timeToDB(user.CreatedAt),
	)
	return mapDBError(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, is_admin, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, is_admin, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, display_name, is_admin, created_at
		 FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u         domain.User
			isAdmin   int64
			createdAt string
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &isAdmin, &createdAt); err != nil {
			return nil, 0, mapDBError(err)
		}
		u.IsAdmin = isAdmin != 0
		if u.CreatedAt, err = timeFromDB(createdAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError(err)
	}
	return users, total, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u         domain.User
		isAdmin   int64
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &isAdmin, &createdAt); err != nil {
		return nil, mapDBError(err)
	}
	u.IsAdmin = isAdmin != 0
	created, err := timeFromDB(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = created
	return &u, nil
}
