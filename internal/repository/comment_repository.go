package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// CommentRepository defines persistence access for review comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	List(ctx context.Context, q ListQuery) ([]domain.Comment, int64, error)
	ListByReview(ctx context.Context, reviewID int64) ([]domain.Comment, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository returns a Postgres-backed implementation.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const commentSelect = `
        SELECT c.id, c.user_id, c.review_id, c.comment, c.created_at, c.updated_at, u.name,
               (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS like_count
        FROM comments c
        JOIN users u ON u.id = c.user_id`

var commentSortColumns = map[string]string{
	"id":        "c.id",
	"createdAt": "c.created_at",
	"updatedAt": "c.updated_at",
	"likeCount": "like_count",
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (user_id, review_id, comment)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, comment.UserID, comment.ReviewID, comment.Comment).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	return translate(err)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	return r.pool.QueryRow(ctx,
		`UPDATE comments SET comment=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`,
		comment.Comment, comment.ID,
	).Scan(&comment.UpdatedAt)
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx, commentSelect+` WHERE c.id=$1`, id))
}

func (r *commentRepository) List(ctx context.Context, q ListQuery) ([]domain.Comment, int64, error) {
	var where whereBuilder
	where.keyword(q.Keyword, "c.comment")
	where.dateRange("c.created_at", q)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments c`+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	comments, err := r.query(ctx, commentSelect+where.sql()+orderBy(q.Sort, commentSortColumns, "id")+page(q), where.args...)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64) ([]domain.Comment, error) {
	return r.query(ctx, commentSelect+` WHERE c.review_id=$1 ORDER BY c.created_at ASC`, reviewID)
}

func (r *commentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Comment, error) {
	return r.query(ctx, commentSelect+` WHERE c.user_id=$1 ORDER BY c.created_at DESC`, userID)
}

func (r *commentRepository) query(ctx context.Context, query string, args ...any) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var (
		comment domain.Comment
		user    domain.UserRef
	)
	if err := row.Scan(
		&comment.ID,
		&comment.UserID,
		&comment.ReviewID,
		&comment.Comment,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&user.Name,
		&comment.LikeCount,
	); err != nil {
		return nil, err
	}
	user.ID = comment.UserID
	comment.User = &user
	return &comment, nil
}
