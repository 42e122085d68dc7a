package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	ListQuery
	Status *domain.OrderStatus
	UserID *int64
}

// OrderRepository defines persistence access for orders and their items.
type OrderRepository interface {
	// Create stores the order and its items atomically.
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	Statistics(ctx context.Context, top int) (*domain.OrderStatistics, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderSelect = `
        SELECT o.id, o.user_id, o.delivery_address, o.total_price, o.order_status,
               o.created_at, o.updated_at, u.name
        FROM orders o
        JOIN users u ON u.id = o.user_id`

var orderSortColumns = map[string]string{
	"id":          "o.id",
	"totalPrice":  "o.total_price",
	"orderStatus": "o.order_status",
	"createdAt":   "o.created_at",
	"updatedAt":   "o.updated_at",
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const orderQuery = `
        INSERT INTO orders (user_id, delivery_address, total_price, order_status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	const itemQuery = `
        INSERT INTO order_items (order_id, book_id, quantity, price_at_purchase)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, orderQuery,
			order.UserID,
			order.DeliveryAddress,
			order.TotalPrice,
			order.Status,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return translate(err)
		}
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			if err := tx.QueryRow(ctx, itemQuery,
				item.OrderID,
				item.BookID,
				item.Quantity,
				item.PriceAtPurchase,
			).Scan(&item.ID); err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id=$1`, id))
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET order_status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error) {
	var where whereBuilder
	where.keyword(filter.Keyword, "o.delivery_address", "u.name")
	where.dateRange("o.created_at", filter.ListQuery)
	if filter.Status != nil {
		where.add("o.order_status = %s", *filter.Status)
	}
	if filter.UserID != nil {
		where.add("o.user_id = %s", *filter.UserID)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id` + where.sql()
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orders, err := r.query(ctx, orderSelect+where.sql()+orderBy(filter.Sort, orderSortColumns, "id")+page(filter.ListQuery), where.args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.query(ctx, orderSelect+` WHERE o.user_id=$1 ORDER BY o.created_at DESC`, userID)
}

// Statistics sums all orders and ranks the best-selling books by quantity.
func (r *orderRepository) Statistics(ctx context.Context, top int) (*domain.OrderStatistics, error) {
	stats := &domain.OrderStatistics{TopBooks: []domain.TopSellingBook{}}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total_price), 0) FROM orders`).
		Scan(&stats.TotalOrders, &stats.TotalSales); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
        SELECT oi.book_id, b.title, SUM(oi.quantity) AS total_quantity
        FROM order_items oi
        JOIN books b ON b.id = oi.book_id
        GROUP BY oi.book_id, b.title
        ORDER BY total_quantity DESC, oi.book_id ASC
        LIMIT $1`, top)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row domain.TopSellingBook
		if err := rows.Scan(&row.BookID, &row.Title, &row.TotalQuantity); err != nil {
			return nil, err
		}
		stats.TopBooks = append(stats.TopBooks, row)
	}
	return stats, rows.Err()
}

func (r *orderRepository) query(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	rows, err := r.pool.Query(ctx, `
        SELECT oi.id, oi.order_id, oi.book_id, oi.quantity, oi.price_at_purchase, b.title, b.price
        FROM order_items oi
        JOIN books b ON b.id = oi.book_id
        WHERE oi.order_id = ANY($1)
        ORDER BY oi.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		book := domain.BookRef{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.BookID, &item.Quantity, &item.PriceAtPurchase, &book.Title, &book.Price); err != nil {
			return err
		}
		book.ID = item.BookID
		item.Book = &book
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order domain.Order
		user  domain.UserRef
	)
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.DeliveryAddress,
		&order.TotalPrice,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
		&user.Name,
	); err != nil {
		return nil, err
	}
	user.ID = order.UserID
	order.User = &user
	return &order, nil
}
