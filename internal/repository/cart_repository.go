package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// CartRepository defines persistence access for cart lines.
type CartRepository interface {
	// AddOrIncrement inserts the line or bumps the quantity of the existing (user, book) line.
	AddOrIncrement(ctx context.Context, item *domain.CartItem) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q ListQuery) ([]domain.CartItem, int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error)
}

type cartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a Postgres-backed implementation.
func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

const cartSelect = `
        SELECT c.id, c.user_id, c.book_id, c.quantity, c.created_at, c.updated_at,
               u.name, b.title, b.price
        FROM carts c
        JOIN users u ON u.id = c.user_id
        JOIN books b ON b.id = c.book_id`

var cartSortColumns = map[string]string{
	"id":        "c.id",
	"quantity":  "c.quantity",
	"createdAt": "c.created_at",
	"updatedAt": "c.updated_at",
}

func (r *cartRepository) AddOrIncrement(ctx context.Context, item *domain.CartItem) (bool, error) {
	const query = `
        INSERT INTO carts (user_id, book_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, book_id)
        DO UPDATE SET quantity = carts.quantity + EXCLUDED.quantity, updated_at = NOW()
        RETURNING id, quantity, created_at, updated_at, (xmax = 0) AS inserted`

	var created bool
	err := r.pool.QueryRow(ctx, query, item.UserID, item.BookID, item.Quantity).Scan(
		&item.ID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
		&created,
	)
	if err != nil {
		return false, translate(err)
	}
	return created, nil
}

func (r *cartRepository) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	return scanCartItem(r.pool.QueryRow(ctx, cartSelect+` WHERE c.id=$1`, id))
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE carts SET quantity=$1, updated_at=NOW() WHERE id=$2`, quantity, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *cartRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cartRepository) List(ctx context.Context, q ListQuery) ([]domain.CartItem, int64, error) {
	var where whereBuilder
	where.keyword(q.Keyword, "b.title", "u.name")
	where.dateRange("c.created_at", q)

	var total int64
	countQuery := `SELECT COUNT(*) FROM carts c JOIN users u ON u.id = c.user_id JOIN books b ON b.id = c.book_id` + where.sql()
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	items, err := r.query(ctx, cartSelect+where.sql()+orderBy(q.Sort, cartSortColumns, "id")+page(q), where.args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	return r.query(ctx, cartSelect+` WHERE c.user_id=$1 ORDER BY c.created_at DESC`, userID)
}

func (r *cartRepository) query(ctx context.Context, query string, args ...any) ([]domain.CartItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var (
		item domain.CartItem
		user domain.UserRef
		book domain.BookRef
	)
	if err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.BookID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
		&user.Name,
		&book.Title,
		&book.Price,
	); err != nil {
		return nil, err
	}
	user.ID = item.UserID
	book.ID = item.BookID
	item.User = &user
	item.Book = &book
	return &item, nil
}
