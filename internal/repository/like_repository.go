package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// LikeRepository defines persistence access for review and comment likes.
type LikeRepository interface {
	Add(ctx context.Context, target domain.LikeTarget, userID, targetID int64) (*domain.Like, error)
	Remove(ctx context.Context, target domain.LikeTarget, userID, targetID int64) error
	ListByTarget(ctx context.Context, target domain.LikeTarget, targetID int64) ([]domain.Like, error)
	ListByUser(ctx context.Context, target domain.LikeTarget, userID int64) ([]domain.Like, error)
}

type likeRepository struct {
	pool *pgxpool.Pool
}

// NewLikeRepository returns a Postgres-backed implementation.
func NewLikeRepository(pool *pgxpool.Pool) LikeRepository {
	return &likeRepository{pool: pool}
}

// likeTable resolves the table and target column for a like kind.
func likeTable(target domain.LikeTarget) (table, column string, err error) {
	switch target {
	case domain.LikeTargetReview:
		return "review_likes", "review_id", nil
	case domain.LikeTargetComment:
		return "comment_likes", "comment_id", nil
	}
	return "", "", fmt.Errorf("unknown like target %q", target)
}

func (r *likeRepository) Add(ctx context.Context, target domain.LikeTarget, userID, targetID int64) (*domain.Like, error) {
	table, column, err := likeTable(target)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, %s) VALUES ($1, $2) RETURNING created_at`, table, column)

	like := domain.Like{UserID: userID, TargetID: targetID, Target: target}
	if err := r.pool.QueryRow(ctx, query, userID, targetID).Scan(&like.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

func (r *likeRepository) Remove(ctx context.Context, target domain.LikeTarget, userID, targetID int64) error {
	table, column, err := likeTable(target)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id=$1 AND %s=$2`, table, column)
	cmd, err := r.pool.Exec(ctx, query, userID, targetID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *likeRepository) ListByTarget(ctx context.Context, target domain.LikeTarget, targetID int64) ([]domain.Like, error) {
	return r.list(ctx, target, false, targetID)
}

func (r *likeRepository) ListByUser(ctx context.Context, target domain.LikeTarget, userID int64) ([]domain.Like, error) {
	return r.list(ctx, target, true, userID)
}

func (r *likeRepository) list(ctx context.Context, target domain.LikeTarget, byUser bool, id int64) ([]domain.Like, error) {
	table, column, err := likeTable(target)
	if err != nil {
		return nil, err
	}
	filterColumn := column
	if byUser {
		filterColumn = "user_id"
	}
	query := fmt.Sprintf(`
        SELECT l.user_id, l.%s, l.created_at, u.name
        FROM %s l JOIN users u ON u.id = l.user_id
        WHERE l.%s = $1
        ORDER BY l.created_at DESC`, column, table, filterColumn)

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := []domain.Like{}
	for rows.Next() {
		like := domain.Like{Target: target}
		user := domain.UserRef{}
		if err := rows.Scan(&like.UserID, &like.TargetID, &like.CreatedAt, &user.Name); err != nil {
			return nil, err
		}
		user.ID = like.UserID
		like.User = &user
		likes = append(likes, like)
	}
	return likes, rows.Err()
}
