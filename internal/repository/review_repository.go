package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// ReviewFilter narrows review listings.
type ReviewFilter struct {
	ListQuery
	BookID *int64
	Rating *int
}

// ReviewRepository defines persistence access for book reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int64, error)
	ListByBook(ctx context.Context, bookID int64) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Review, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a Postgres-backed implementation.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

const reviewSelect = `
        SELECT r.id, r.user_id, r.book_id, r.rating, r.comment, r.created_at, r.updated_at,
               u.name, b.title, b.price,
               (SELECT COUNT(*) FROM review_likes rl WHERE rl.review_id = r.id) AS like_count
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        JOIN books b ON b.id = r.book_id`

var reviewSortColumns = map[string]string{
	"id":        "r.id",
	"rating":    "r.rating",
	"createdAt": "r.created_at",
	"updatedAt": "r.updated_at",
	"likeCount": "like_count",
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (user_id, book_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		review.UserID,
		review.BookID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	return translate(err)
}

func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	const query = `
        UPDATE reviews SET rating=$1, comment=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query, review.Rating, review.Comment, review.ID).Scan(&review.UpdatedAt)
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	return scanReview(r.pool.QueryRow(ctx, reviewSelect+` WHERE r.id=$1`, id))
}

func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int64, error) {
	var where whereBuilder
	where.keyword(filter.Keyword, "r.comment", "b.title")
	where.dateRange("r.created_at", filter.ListQuery)
	if filter.BookID != nil {
		where.add("r.book_id = %s", *filter.BookID)
	}
	if filter.Rating != nil {
		where.add("r.rating = %s", *filter.Rating)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM reviews r JOIN books b ON b.id = r.book_id` + where.sql()
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	reviews, err := r.query(ctx, reviewSelect+where.sql()+orderBy(filter.Sort, reviewSortColumns, "id")+page(filter.ListQuery), where.args...)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID int64) ([]domain.Review, error) {
	return r.query(ctx, reviewSelect+` WHERE r.book_id=$1 ORDER BY r.created_at DESC`, bookID)
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	return r.query(ctx, reviewSelect+` WHERE r.user_id=$1 ORDER BY r.created_at DESC`, userID)
}

func (r *reviewRepository) query(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, rows.Err()
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		review domain.Review
		user   domain.UserRef
		book   domain.BookRef
	)
	if err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.BookID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
		&user.Name,
		&book.Title,
		&book.Price,
		&review.LikeCount,
	); err != nil {
		return nil, err
	}
	user.ID = review.UserID
	book.ID = review.BookID
	review.User = &user
	review.Book = &book
	return &review, nil
}
