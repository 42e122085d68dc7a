package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	ListQuery
	Role *domain.Role
}

// UserRepository defines persistence access for customers and administrators.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error)
	UpdateRefreshToken(ctx context.Context, id int64, token *string) error
	Ban(ctx context.Context, id int64, at time.Time) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, name, gender, role, password_hash, refresh_token, banned_at, created_at, updated_at`

var userSortColumns = map[string]string{
	"id":        "id",
	"email":     "email",
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, name, gender, role, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.Gender,
		user.Role,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translate(err)
}

// Update saves profile fields. A changed password hash revokes the stored refresh token.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, gender=$2, password_hash=$3, role=$4, updated_at=NOW(),
            refresh_token = CASE WHEN password_hash = $3 THEN refresh_token END
        WHERE id=$5
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Gender,
		user.PasswordHash,
		user.Role,
		user.ID,
	).Scan(&user.UpdatedAt)
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	return scanUser(row)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error) {
	var where whereBuilder
	where.keyword(filter.Keyword, "email", "name")
	where.dateRange("created_at", filter.ListQuery)
	if filter.Role != nil {
		where.add("role = %s", *filter.Role)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where.sql() +
		orderBy(filter.Sort, userSortColumns, "id") + page(filter.ListQuery)
	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

// UpdateRefreshToken replaces the persisted refresh token in a single statement; nil clears it.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, id int64, token *string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token=$1 WHERE id=$2`, token, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Ban marks the user suspended and revokes their session.
func (r *userRepository) Ban(ctx context.Context, id int64, at time.Time) error {
	const query = `
        UPDATE users SET banned_at=$1, refresh_token=NULL, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Gender,
		&user.Role,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.BannedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
